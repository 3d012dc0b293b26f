package why

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/cmd/analyze"
	"github.com/LegacyCodeHQ/codegraph/depgraph"
	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
)

const (
	formatText    = "text"
	formatDOT     = "dot"
	formatMermaid = "mermaid"
)

type whyOptions struct {
	outputFormat string
	repoPath     string
}

type directConnection struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Imports int    `json:"imports"`
	InCycle bool   `json:"in_cycle"`
}

// Cmd represents the why command.
var Cmd = NewCommand()

// NewCommand returns a new why command instance.
func NewCommand() *cobra.Command {
	opts := &whyOptions{
		outputFormat: formatText,
	}

	cmd := &cobra.Command{
		Use:   "why <from> <to>",
		Short: "Show direct dependency direction(s) between two files.",
		Long: `Show the immediate import edge(s) between two files of a local repository,
how many import statements back each edge, and whether the pair sits on a
circular dependency.

Examples:
  codegraph why app/main.py app/db.py
  codegraph why -r ./service api.py models.py -f dot`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhy(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", supportedFormats()))
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", "", "Repository path (default: current directory)")
	cmd.Flags().Bool("include-tests", false, "Include test files")

	return cmd
}

func runWhy(cmd *cobra.Command, opts *whyOptions, fromArg, toArg string) error {
	if !isSupportedFormat(opts.outputFormat) {
		return fmt.Errorf("unknown format: %s (valid options: %s)", opts.outputFormat, supportedFormats())
	}

	repoPath := opts.repoPath
	if repoPath == "" {
		repoPath = "."
	}

	pathResolver, err := analyze.NewPathResolver(repoPath)
	if err != nil {
		return fmt.Errorf("failed to create path resolver: %w", err)
	}
	fromID, err := pathResolver.Resolve(analyze.RawPath(fromArg))
	if err != nil {
		return fmt.Errorf("failed to resolve from file %q: %w", fromArg, err)
	}
	toID, err := pathResolver.Resolve(analyze.RawPath(toArg))
	if err != nil {
		return fmt.Errorf("failed to resolve to file %q: %w", toArg, err)
	}

	rt, err := bootstrap.FromCommand(cmd)
	if err != nil {
		return err
	}
	req := rt.Request(repoPath)
	// Both files must be in the graph regardless of the configured limit.
	req.MaxFiles = 0
	result, err := rt.LocalService().Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	graph := result.Graph

	if _, ok := graph.Node(string(fromID)); !ok {
		return fmt.Errorf("from file not found in dependency graph: %s", fromArg)
	}
	if _, ok := graph.Node(string(toID)); !ok {
		return fmt.Errorf("to file not found in dependency graph: %s", toArg)
	}

	connections := findDirectConnections(graph, string(fromID), string(toID))
	output := formatOutput(opts.outputFormat, string(fromID), string(toID), connections)

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func findDirectConnections(g *depgraph.Graph, fromID, toID string) []directConnection {
	var connections []directConnection
	for _, pair := range [][2]string{{fromID, toID}, {toID, fromID}} {
		for _, edge := range g.Edges {
			if edge.Source == pair[0] && edge.Target == pair[1] {
				connections = append(connections, directConnection{
					From:    edge.Source,
					To:      edge.Target,
					Imports: edge.Weight,
					InCycle: g.InCycle(edge.Source, edge.Target),
				})
			}
		}
	}
	return connections
}

func formatOutput(format, fromID, toID string, connections []directConnection) string {
	switch strings.ToLower(format) {
	case formatDOT:
		return formatDOTOutput(fromID, toID, connections)
	case formatMermaid:
		return formatMermaidOutput(fromID, toID, connections)
	default:
		return formatTextOutput(fromID, toID, connections)
	}
}

func formatTextOutput(fromID, toID string, connections []directConnection) string {
	if len(connections) == 0 {
		return fmt.Sprintf("No immediate dependency between %s and %s.", fromID, toID)
	}

	lines := []string{
		fmt.Sprintf("Direct connection(s) between %s and %s:", fromID, toID),
	}
	for _, c := range connections {
		line := fmt.Sprintf("- %s depends on %s (%s)", c.From, c.To, pluralImports(c.Imports))
		if c.InCycle {
			line += " [circular]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatDOTOutput(fromID, toID string, connections []directConnection) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(fmt.Sprintf("  %q [shape=box];\n", fromID))
	b.WriteString(fmt.Sprintf("  %q [shape=box];\n", toID))
	for _, c := range connections {
		attrs := fmt.Sprintf("label=%q", pluralImports(c.Imports))
		if c.InCycle {
			attrs += ", color=red"
		}
		b.WriteString(fmt.Sprintf("  %q -> %q [%s];\n", c.From, c.To, attrs))
	}
	b.WriteString("}")
	return b.String()
}

func formatMermaidOutput(fromID, toID string, connections []directConnection) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")
	b.WriteString(fmt.Sprintf("  n0[%q]\n", fromID))
	b.WriteString(fmt.Sprintf("  n1[%q]\n", toID))

	for _, c := range connections {
		fromNode, toNode := "n0", "n1"
		if c.From == toID {
			fromNode, toNode = "n1", "n0"
		}
		b.WriteString(fmt.Sprintf("  %s -->|%q| %s\n", fromNode, pluralImports(c.Imports), toNode))
	}
	return b.String()
}

func pluralImports(n int) string {
	if n == 1 {
		return "1 import"
	}
	return fmt.Sprintf("%d imports", n)
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case formatText, formatDOT, formatMermaid:
		return true
	default:
		return false
	}
}

func supportedFormats() string {
	return strings.Join([]string{formatText, formatDOT, formatMermaid}, ", ")
}
