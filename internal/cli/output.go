package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/feed"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

var _ pflag.Value = (*OutputFormat)(nil)

func (f *OutputFormat) String() string { return string(*f) }

// Set implements pflag.Value so --output is validated while parsing flags.
func (f *OutputFormat) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f *OutputFormat) Type() string { return "format" }

type OutputOptions struct {
	Format OutputFormat
	Quiet  bool
	Writer io.Writer
}

func NewOutputOptions() *OutputOptions {
	return &OutputOptions{
		Format: DefaultFormat(),
		Writer: os.Stdout,
	}
}

// DefaultFormat is table on a terminal and JSON when piped.
func DefaultFormat() OutputFormat {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return OutputTable
	}
	return OutputJSON
}

// ParseFormat validates a --output value. Empty selects DefaultFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return DefaultFormat(), nil
	case OutputTable, OutputJSON, OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid --output value %q", s)
	}
}

func PrintOutput(data any, opts *OutputOptions) error {
	if opts.Quiet {
		return nil
	}
	out, err := FormatOutput(data, opts.Format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(opts.Writer, strings.TrimRight(out, "\n"))
	return err
}

func FormatOutput(data any, format OutputFormat) (string, error) {
	switch format {
	case OutputJSON:
		return formatJSON(data)
	case OutputYAML:
		return formatYAML(data)
	default:
		return formatTable(data)
	}
}

func formatJSON(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	return string(b), nil
}

// formatYAML goes through JSON so keys match the JSON field names.
func formatYAML(data any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return "", fmt.Errorf("unmarshal JSON: %w", err)
	}
	y, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("marshal YAML: %w", err)
	}
	return string(y), nil
}

func formatTable(data any) (string, error) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	switch v := data.(type) {
	case []agent.Agent:
		if len(v) == 0 {
			return "No agents", nil
		}
		fmt.Fprintln(w, "ID\tNAME\tMOOD\tLEVEL\tSTATUS\tPLAN")
		for _, a := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.Name, a.Mood.Current, level(a.Mood.Level), a.Status, a.CurrentPlan)
		}
	case *agent.Agent:
		writeAgent(w, v)
	case agent.Graph:
		fmt.Fprintln(w, "SOURCE\tTARGET\tTYPE\tSENTIMENT")
		for _, e := range v.Edges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", nodeName(v, e.Source), nodeName(v, e.Target), e.Type, level(e.Sentiment))
		}
	case []feed.Event:
		if len(v) == 0 {
			return "No events", nil
		}
		writeEventHeader(w)
		for _, e := range v {
			writeEventRow(w, e)
		}
	case feed.Event:
		writeEventHeader(w)
		writeEventRow(w, v)
	default:
		return formatJSON(data)
	}

	w.Flush()
	return sb.String(), nil
}

func writeAgent(w io.Writer, a *agent.Agent) {
	fmt.Fprintf(w, "id\t%s\n", a.ID)
	fmt.Fprintf(w, "name\t%s %s\n", a.Avatar, a.Name)
	fmt.Fprintf(w, "status\t%s\n", a.Status)
	fmt.Fprintf(w, "mood\t%s (%s)\n", a.Mood.Current, level(a.Mood.Level))
	fmt.Fprintf(w, "traits\t%s\n", strings.Join(a.Personality.Traits, ", "))
	fmt.Fprintf(w, "background\t%s\n", a.Personality.Background)
	fmt.Fprintf(w, "plan\t%s\n", a.CurrentPlan)
	if a.CurrentGoal != nil {
		fmt.Fprintf(w, "goal\t%s\n", *a.CurrentGoal)
	}
	for _, r := range a.Relationships {
		fmt.Fprintf(w, "relationship\t%s: %s (%s)\n", r.AgentName, r.Type, level(r.Sentiment))
	}
	for _, m := range a.Memories {
		fmt.Fprintf(w, "memory\t%s %s\n", timestamp(m.Timestamp), m.Content)
	}
}

func writeEventHeader(w io.Writer) {
	fmt.Fprintln(w, "ID\tTIME\tTYPE\tMOOD\tAGENT\tCONTENT")
}

func writeEventRow(w io.Writer, e feed.Event) {
	name := "-"
	if e.AgentName != nil {
		name = *e.AgentName
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		e.ID, timestamp(e.Timestamp), e.Type, e.Mood, name, e.Content)
}

func nodeName(g agent.Graph, id string) string {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n.Name
		}
	}
	return id
}

func level(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
