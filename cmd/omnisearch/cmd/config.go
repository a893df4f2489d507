package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/config"
)

// newConfigCmd creates the config command.
func newConfigCmd() *cobra.Command {
	var setMode string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			if setMode != "" {
				if !a.cfg.SetMode(config.Mode(setMode)) {
					return fmt.Errorf("mode must be %q or %q", config.ModeDirect, config.ModeUnified)
				}
			}

			snapshot := a.cfg.Snapshot()
			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&setMode, "set-mode", "", "Switch dispatch mode (direct or unified)")
	return cmd
}
