package analyze

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
)

// Cmd represents the analyze command.
var Cmd = NewCommand()

type options struct {
	format      string
	between     []string
	generateURL bool
}

// NewCommand returns a new analyze command instance.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "analyze <path|url>",
		Short: "Build the dependency graph of a Python repository",
		Long: `Build the file-level dependency graph of a Python repository and print it.

The target is either a local directory or a repository URL. URLs are shallow
cloned into a temporary directory that is removed afterwards.

Examples:
  codegraph analyze .
  codegraph analyze https://github.com/psf/requests --max-files 200
  codegraph analyze ./service -f dot -u             # GraphvizOnline link
  codegraph analyze . -w app/main.py,app/db.py      # paths between files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatters.OutputFormatText.String(), fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().StringSliceVarP(&opts.between, "between", "w", nil, "Only show files on dependency paths between these files")
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Print a link that renders the output online")

	cmd.Flags().Int("max-files", analysis.DefaultMaxFiles, "Maximum number of files to analyze (0 for no limit)")
	cmd.Flags().Bool("include-tests", false, "Include test files")
	cmd.Flags().Int("workers", 0, "Files parsed in parallel (default: number of CPUs)")
	cmd.Flags().Int("most-connected", 5, "Number of hub files listed in metrics")
	cmd.Flags().StringSlice("source-root", nil, "Directories absolute imports are resolved against (default: .,src)")
	cmd.Flags().StringSlice("allowed-host", nil, "Hosts repositories may be cloned from (default: github.com)")
	cmd.Flags().Duration("clone-timeout", 0, "Clone timeout (default: 2m)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, target string, opts *options) error {
	formatter, err := formatters.NewFormatter(opts.format)
	if err != nil {
		return err
	}

	rt, err := bootstrap.FromCommand(cmd)
	if err != nil {
		return err
	}

	result, err := rt.ServiceFor(target).Run(cmd.Context(), rt.Request(target))
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", target, err)
	}

	graph := result.Graph
	if len(opts.between) > 0 {
		baseDir := ""
		if bootstrap.IsLocalDir(target) {
			baseDir = target
		}
		graph, err = betweenSubgraph(graph, baseDir, opts.between)
		if err != nil {
			return err
		}
	}

	output, err := formatter.Format(graph, formatters.FormatOptions{
		Label:    graphLabel(result.RepoName, graph),
		RepoName: result.RepoName,
		RepoURL:  result.RepoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	if opts.generateURL {
		if urlStr, ok := formatter.GenerateURL(output); ok {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), urlStr)
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: URL generation is not supported for %s format\n\n", opts.format)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}

// betweenSubgraph narrows graph to the files on paths between the given files.
func betweenSubgraph(graph *depgraph.Graph, baseDir string, files []string) (*depgraph.Graph, error) {
	resolver, err := NewPathResolver(baseDir)
	if err != nil {
		return nil, err
	}

	var targets []string
	var missing []string
	for _, file := range files {
		id, err := resolver.Resolve(RawPath(file))
		if err != nil {
			return nil, err
		}
		if _, ok := graph.Node(string(id)); !ok {
			missing = append(missing, file)
			continue
		}
		targets = append(targets, string(id))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("files not found in graph: %v", missing)
	}
	if len(targets) < 2 {
		return nil, fmt.Errorf("at least 2 files required for --between, found %d in graph", len(targets))
	}
	return graph.PathSubgraph(targets), nil
}

func graphLabel(repoName string, graph *depgraph.Graph) string {
	label := repoName
	if label != "" {
		label += " • "
	}
	if graph.Metrics.TotalFiles == 1 {
		label += "1 file"
	} else {
		label += fmt.Sprintf("%d files", graph.Metrics.TotalFiles)
	}
	switch n := len(graph.Cycles); {
	case n == 1:
		label += " • 1 cycle"
	case n > 1:
		label += fmt.Sprintf(" • %d cycles", n)
	}
	return label
}
