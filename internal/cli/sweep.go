package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/artifact"
)

func (c *CLI) sweepCommand() *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired generated cards",
		Long: `Delete generated cards older than the retention age once and exit. The
server runs the same sweep periodically; this command suits cron jobs and
deployments that run the server with --no-sweep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-age") {
				maxAge = cfg.Retention.MaxAge.Duration
			}
			store, err := artifact.NewStore(cfg.Paths.Generated, cfg.Server.ArtifactURL, c.Logger)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Sweeping expired cards...")
			spinner.Start()
			n, err := store.Sweep(cmd.Context(), maxAge)
			if err != nil {
				spinner.StopWithError(err.Error())
				return err
			}
			prog.done("Swept " + store.Dir())
			spinner.StopWithSuccess(fmt.Sprintf("Removed %s older than %s", plural(n, "card"), maxAge))
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", artifact.DefaultRetention, "delete cards older than this (default: config retention.max_age)")
	return cmd
}
