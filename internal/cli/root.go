package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/config"
	"github.com/nidhogg/nuka-view/internal/feed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/nuka-view.json"

// RootCommand owns the stores shared by every subcommand of one invocation.
type RootCommand struct {
	cmd  *cobra.Command
	cfg  *config.Config
	opts *OutputOptions

	configPath string
	server     string
	token      string
	timeout    time.Duration
	verbose    bool

	logger *zap.Logger
	agents *agent.Store
	events *feed.Store
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{
		opts: NewOutputOptions(),
	}

	cmd := &cobra.Command{
		Use:   "nukactl",
		Short: "Inspect agents and events of a Nuka simulation",
		Long: `nukactl reads the simulation backend through the same stores the view
server uses and prints their display models.

Output is a table on a terminal and JSON otherwise.`,
		SilenceUsage:      true,
		PersistentPreRunE: root.persistentPreRunE,
	}

	configDefault := os.Getenv("CONFIG_PATH")
	if configDefault == "" {
		configDefault = defaultConfigPath
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&root.configPath, "config", configDefault, "Config file path")
	pflags.StringVarP(&root.server, "server", "s", "", "Backend base URL (overrides config)")
	pflags.StringVar(&root.token, "token", "", "Bearer token (overrides config)")
	pflags.DurationVar(&root.timeout, "timeout", 0, "Request timeout (overrides config)")
	pflags.VarP(&root.opts.Format, "output", "o", "Output format (table, json, yaml)")
	pflags.BoolVarP(&root.opts.Quiet, "quiet", "q", false, "Suppress output")
	pflags.BoolVarP(&root.verbose, "verbose", "v", false, "Log requests to stderr")

	root.cmd = cmd
	root.addSubCommands()
	return root
}

func (r *RootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if r.server != "" {
		cfg.Backend.BaseURL = r.server
	}
	if r.token != "" {
		cfg.Backend.Token = r.token
	}
	if r.timeout > 0 {
		cfg.Backend.TimeoutD = r.timeout
	}
	r.cfg = cfg

	if r.logger == nil {
		r.logger = zap.NewNop()
		if r.verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				r.logger = l
			}
		}
	}

	c := client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.TimeoutD,
	}, r.logger)
	r.agents = agent.NewStore(c, r.logger)
	r.events = feed.NewStore(c, cfg.Feed.Limit, r.logger)
	return nil
}

func (r *RootCommand) addSubCommands() {
	r.cmd.AddCommand(NewAgentsCommand(r))
	r.cmd.AddCommand(NewAgentCommand(r))
	r.cmd.AddCommand(NewGraphCommand(r))
	r.cmd.AddCommand(NewEventsCommand(r))
	r.cmd.AddCommand(NewHistoryCommand(r))
	r.cmd.AddCommand(NewWorldCommand(r))
	r.cmd.AddCommand(NewActCommand(r))
	r.cmd.AddCommand(NewWatchCommand(r))
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Config() *config.Config {
	return r.cfg
}

func (r *RootCommand) OutputOptions() *OutputOptions {
	return r.opts
}

func (r *RootCommand) SetOutputWriter(w io.Writer) {
	r.opts.Writer = w
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}
