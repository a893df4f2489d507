package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/ui"
)

// newHealthCmd creates the health command.
func newHealthCmd() *cobra.Command {
	var reset string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show provider health and available dispatch sets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			if reset != "" {
				if _, ok := a.orch.Registry().Get(reset); !ok {
					return fmt.Errorf("unknown provider %q", reset)
				}
				a.orch.Health().Reset(reset)
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", reset)
			}

			// Include registered providers with no recorded outcome yet.
			records := a.orch.Health().All()
			for _, name := range a.orch.Registry().AllNames() {
				if _, ok := records[name]; !ok {
					a.orch.Health().Register(name)
				}
			}
			records = a.orch.Health().All()

			out := ui.RenderHealth(records,
				a.orch.Available(provider.CategorySearch),
				a.orch.Available(provider.CategoryAIResponse),
				styles())
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&reset, "reset", "", "Reset a provider's failure state before reporting")
	return cmd
}
