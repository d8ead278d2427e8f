package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sant0-9/quill/internal/llm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the quill configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, _, err := loadConfig(global)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, found, err := loadConfig(global)
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.APIKey != "" {
				shown.APIKey = shown.MaskedAPIKey()
			}
			data, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s does not exist, showing defaults\n", path)
			}
			cmd.OutOrStdout().Write(data)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check that the configured provider answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(global)
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(cfg, global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			provider, err := llm.NewProvider(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), 10*time.Second)
			defer cancel()
			if err := provider.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable (model %s)\n", provider.Name(), cfg.Model)
			return nil
		},
	})

	return cmd
}
