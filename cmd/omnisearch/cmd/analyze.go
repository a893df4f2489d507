package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/ui"
)

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <query>",
		Short: "Show how a query would be classified and routed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			chars := a.orch.Analyzer().Analyze(query)
			available := a.orch.Available(provider.CategorySearch)

			out := ui.RenderAnalysis(query, chars,
				analyzer.Recommend(chars, available),
				analyzer.ScoreProviders(chars, available),
				styles())
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
