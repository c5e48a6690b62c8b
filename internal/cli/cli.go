package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/buildinfo"
	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/compose"
	"github.com/matzehuels/greetcard/pkg/config"
	"github.com/matzehuels/greetcard/pkg/pipeline"
	"github.com/matzehuels/greetcard/pkg/record"
	"github.com/matzehuels/greetcard/pkg/render"
	"github.com/matzehuels/greetcard/pkg/template"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "greetcard"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath   string
	templatesDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Greetcard renders personalized greeting cards",
		Long: `Greetcard lays a name out inside the text slot of a card template, composites
it (with an optional photo) onto the template image, and serves the result over HTTP.
The preview renderer uses the same layout so what you see is what you download.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&c.templatesDir, "templates", "", "template directory (overrides config)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.recordsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the config file and environment, applies flag overrides
// and resolves relative paths against the working directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.templatesDir != "" {
		cfg.Paths.Templates = c.templatesDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working dir: %w", err)
	}
	cfg.ResolvePaths(wd)
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() > level {
		c.Logger.SetLevel(level)
	}
	return cfg, nil
}

// appOptions select the optional parts of an app.
type appOptions struct {
	// noCache disables every cache backend.
	noCache bool
	// record enables greeting persistence when MongoDB is configured.
	record bool
	// localCache falls back to the per-user file cache when the config
	// names no backend. Interactive commands use it; the server does not.
	localCache bool
}

// app bundles the components built from one config.
type app struct {
	cfg       *config.Config
	templates *template.Store
	artifacts *artifact.Store
	runner    *pipeline.Runner
}

// newApp wires stores, renderer, cache and recorder from cfg.
func (c *CLI) newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	cc, err := c.newCache(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")

	templates := template.NewStore(cfg.Paths.Templates,
		template.WithCache(cc, keyer),
		template.WithLogger(c.Logger))

	artifacts, err := artifact.NewStore(cfg.Paths.Generated, cfg.Server.ArtifactURL, c.Logger)
	if err != nil {
		cc.Close()
		return nil, err
	}

	raster, err := render.New(cfg.Render.Backend)
	if err != nil {
		cc.Close()
		return nil, err
	}
	c.Logger.Debug("rasterizer", "backend", raster.Name())

	var rec record.Recorder = record.Nop{}
	if opts.record {
		rec = record.Init(ctx, cfg.Mongo.Record(), c.Logger)
	}

	runner := pipeline.NewRunner(templates, compose.New(templates, artifacts, raster, c.Logger), rec, cc, keyer, c.Logger)
	runner.MaxTextLen = cfg.Text.MaxLen
	runner.DefaultFormat = artifact.Format(cfg.Render.Format)

	return &app{cfg: cfg, templates: templates, artifacts: artifacts, runner: runner}, nil
}

// Close drains pending records and releases cache and recorder.
func (a *app) Close(ctx context.Context) error {
	return a.runner.Close(ctx)
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, opts appOptions) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	backend := cfg.Cache.Backend
	if (backend == "" || backend == cache.BackendNone) && opts.localCache {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	cc, err := cache.Open(ctx, cfg.Cache.Options())
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", backend, err)
	}
	return cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/greetcard/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
