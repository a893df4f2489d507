package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/ui"
)

// newSearchCmd creates the one-shot search command.
func newSearchCmd() *cobra.Command {
	var limit int
	var includeDomains, excludeDomains []string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a unified search from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.orch.Search(cmd.Context(), provider.SearchParams{
				Query:          strings.Join(args, " "),
				Limit:          limit,
				IncludeDomains: includeDomains,
				ExcludeDomains: excludeDomains,
			})

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderResult(res, styles()))
			if !res.Success {
				return fmt.Errorf("%s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results (1-50)")
	cmd.Flags().StringSliceVar(&includeDomains, "include-domain", nil, "Restrict results to these domains")
	cmd.Flags().StringSliceVar(&excludeDomains, "exclude-domain", nil, "Exclude results from these domains")
	return cmd
}

// newAICmd creates the one-shot AI-answer command.
func newAICmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ai <query>",
		Short: "Ask the AI-answer back-ends from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.orch.AISearch(cmd.Context(), provider.SearchParams{
				Query: strings.Join(args, " "),
				Limit: limit,
			})

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderResult(res, styles()))
			if !res.Success {
				return fmt.Errorf("%s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results (1-50)")
	return cmd
}
