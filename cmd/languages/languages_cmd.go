package languages

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	"github.com/LegacyCodeHQ/codegraph/depgraph/registry"
)

// Cmd represents the languages command.
var Cmd = NewCommand()

// NewCommand returns a new languages command instance.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List all supported languages and file extensions",
		Long: `List all supported programming languages, their mapped file extensions,
and how mature each language's analysis is.

Examples:
  codegraph languages
  codegraph languages --legend`,
		Args: cobra.NoArgs,
		RunE: runLanguages,
	}
	cmd.Flags().Bool("legend", false, "Explain the maturity symbols")

	return cmd
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, language := range registry.SupportedLanguages() {
		if _, err := fmt.Fprintf(out, "%s %s (%s)\n", language.Maturity.Symbol(), language.Name, strings.Join(language.Extensions, ", ")); err != nil {
			return err
		}
	}

	legend, _ := cmd.Flags().GetBool("legend")
	if !legend {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	for _, level := range langsupport.MaturityLevels() {
		if _, err := fmt.Fprintf(out, "%s %s\n", level.Symbol(), level.DisplayName()); err != nil {
			return err
		}
	}
	return nil
}
