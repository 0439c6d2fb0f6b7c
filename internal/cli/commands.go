package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/feed"
	"github.com/nidhogg/nuka-view/internal/notify"
	"github.com/nidhogg/nuka-view/internal/state"
	"github.com/spf13/cobra"
)

func NewAgentsCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := root.agents.List(cmd.Context())
			warnSource(cmd, res.Source, res.Err)
			return PrintOutput(res.Value, root.opts)
		},
	}
}

func NewAgentCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "agent <id>",
		Short: "Show one agent in detail",
		Long: `Show one agent in detail.

The agent list is loaded first, so the summary entry is shown when the
detail request fails.`,
		Example: `  nukactl agent 1
  nukactl agent 1 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root.agents.List(ctx)
			a := root.agents.Select(ctx, args[0])
			if a == nil {
				return fmt.Errorf("agent %s not found", args[0])
			}
			return PrintOutput(a, root.opts)
		},
	}
}

func NewGraphCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Show the relationship graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := root.agents.Graph(cmd.Context())
			warnSource(cmd, res.Source, res.Err)
			return PrintOutput(res.Value, root.opts)
		},
	}
}

func NewEventsCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the event feed",
		Long: `List the most recent events.

When the backend is unreachable the sample events are shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := root.events.List(cmd.Context())
			warnSource(cmd, res.Source, res.Err)
			return PrintOutput(res.Value, root.opts)
		},
	}
}

func NewHistoryCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "history <agent-id>",
		Short: "List events involving one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := root.events.History(cmd.Context(), args[0])
			warnSource(cmd, res.Source, res.Err)
			return PrintOutput(res.Value, root.opts)
		},
	}
}

func NewWorldCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:     "world <description>",
		Short:   "Submit a world event",
		Example: `  nukactl world "Над долиной начинается гроза"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := root.events.Add(cmd.Context(), feed.WorldEvent{Description: strings.Join(args, " ")})
			return PrintOutput(e, root.opts)
		},
	}
}

func NewActCommand(root *RootCommand) *cobra.Command {
	var in feed.AgentEvent
	var metadata string

	cmd := &cobra.Command{
		Use:   "act",
		Short: "Submit an agent event",
		Example: `  # Alex says something to Maria
  nukactl act --agent 1 --target 2 --kind chat --content "привет"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if metadata != "" {
				if err := json.Unmarshal([]byte(metadata), &in.Metadata); err != nil {
					return fmt.Errorf("parse --metadata: %w", err)
				}
			}
			e := root.events.Add(cmd.Context(), in)
			return PrintOutput(e, root.opts)
		},
	}

	cmd.Flags().StringVarP(&in.AgentID, "agent", "a", "", "Originating agent ID")
	cmd.Flags().StringVarP(&in.TargetAgentID, "target", "t", "", "Target agent ID")
	cmd.Flags().StringVarP(&in.Kind, "kind", "k", "", "Event type (default action)")
	cmd.Flags().StringVarP(&in.Content, "content", "c", "", "Spoken or written content")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Metadata as a JSON object")
	cmd.MarkFlagRequired("agent")

	return cmd
}

func NewWatchCommand(root *RootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow store changes published by nuka-view",
		Long: `Follow the change streams a nuka-view server publishes to Redis.

Requires redis.url in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Config()
			if cfg.Redis.URL == "" {
				return errors.New("redis.url is not configured")
			}
			p, err := notify.NewPublisher(cfg.Redis.URL, cfg.Redis.StreamPrefix, root.logger)
			if err != nil {
				return err
			}
			defer p.Close()
			return watch(cmd.Context(), root, p.Subscribe(cmd.Context(), agent.StoreName), p.Subscribe(cmd.Context(), feed.StoreName))
		},
	}
}

func watch(ctx context.Context, root *RootCommand, agents, events <-chan state.Change) error {
	for agents != nil || events != nil {
		var c state.Change
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case c, ok = <-agents:
			if !ok {
				agents = nil
				continue
			}
		case c, ok = <-events:
			if !ok {
				events = nil
				continue
			}
		}
		if err := printChange(root.opts, c); err != nil {
			return err
		}
	}
	return nil
}

func printChange(opts *OutputOptions, c state.Change) error {
	if opts.Quiet {
		return nil
	}
	if opts.Format != OutputTable {
		b, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(opts.Writer, string(b))
		return err
	}
	_, err := fmt.Fprintf(opts.Writer, "%s  %-6s  %-7s  %-8s  id=%s count=%d\n",
		timestamp(c.At), c.Store, c.Kind, c.Source, c.ID, c.Count)
	return err
}

func warnSource(cmd *cobra.Command, source state.Source, err error) {
	switch source {
	case state.SourceFallback:
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: backend unavailable, showing sample data: %v\n", err)
	case state.SourceEmpty:
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: backend unavailable: %v\n", err)
	}
}
