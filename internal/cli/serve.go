package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sant0-9/quill/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation form in the browser",
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

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("quill listening on http://%s\n", addr)
			return web.NewServer(cfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}
