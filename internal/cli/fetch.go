package cli

import (
	"fmt"

	"github.com/sant0-9/quill/internal/reference"
	"github.com/spf13/cobra"
)

func newFetchCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <url>...",
		Short: "Show the reference excerpt quill would read from each URL",
		Args:  cobra.MinimumNArgs(1),
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

			ext := reference.NewExtractor(cfg.ScrapeTimeout)
			out := cmd.OutOrStdout()
			for i, ref := range ext.ExtractAll(contextOrBackground(cmd.Context()), args) {
				status := "ok"
				if !ref.OK() {
					status = fmt.Sprintf("failed (%s)", reference.KindOf(ref.Err))
				}
				fmt.Fprintf(out, "Reference %d (%s): %s\n%s\n\n", i+1, ref.URL, status, ref.Text)
			}
			return nil
		},
	}
}
