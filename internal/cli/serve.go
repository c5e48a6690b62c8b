package cli

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/greetcard/internal/server"
	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/observability"
)

// shutdownTimeout bounds draining background records after the listener stops.
const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	host    string
	port    int
	noSweep bool
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API that generates cards, serves previews and templates, and
builds share links.

Generated cards older than retention.max_age are deleted every
retention.interval unless --no-sweep is set. When MONGODB_URI is set each
generated card is recorded; when REDIS_URL is set previews and template
metadata are cached in Redis.`,
		Example: `  # Serve on the default port
  greetcard serve

  # Serve a custom template directory on port 8080
  greetcard serve --templates ./cards --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (overrides config and PORT)")
	cmd.Flags().BoolVar(&opts.noSweep, "no-sweep", false, "do not delete expired cards")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetGenerationHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetStorageHooks(hooks)

	a, err := c.newApp(ctx, cfg, appOptions{record: true})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			c.Logger.Warn("shutdown", "err", err)
		}
	}()

	srv := server.New(server.Options{
		Runner:       a.runner,
		Artifacts:    a.artifacts,
		Logger:       c.Logger,
		BaseURL:      cfg.Server.BaseURL,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	})

	c.Logger.Info("serving",
		"url", listenURL(cfg.Server.Host, cfg.Server.Port),
		"templates", cfg.Paths.Templates,
		"generated", cfg.Paths.Generated,
		"cache", cfg.Cache.Backend,
		"recording", a.runner.Recorder.Enabled())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Run(gctx, cfg.Server.Addr())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	if !opts.noSweep {
		sweeper := &artifact.Sweeper{
			Store:    a.artifacts,
			Interval: cfg.Retention.Interval.Duration,
			MaxAge:   cfg.Retention.MaxAge.Duration,
			Logger:   c.Logger.WithPrefix("sweep"),
		}
		g.Go(func() error {
			sweeper.Run(gctx)
			return nil
		})
	}

	err = g.Wait()
	if err == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// listenURL formats an address for display.
func listenURL(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return "http://" + host + ":" + strconv.Itoa(port)
}
