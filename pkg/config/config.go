// Package config loads greetcard settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// an optional TOML file, and environment variables. The file is optional;
// an empty path falls back to DefaultFile in the working directory when it
// exists.
//
// Example greetcard.toml:
//
//	[server]
//	port = 4000
//	base_url = "https://cards.example.com"
//
//	[paths]
//	templates = "templates"
//	generated = "generated"
//
//	[retention]
//	max_age = "24h"
//	interval = "1h"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/pipeline"
	"github.com/matzehuels/greetcard/pkg/record"
	"github.com/matzehuels/greetcard/pkg/render"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "greetcard.toml"

// DefaultPort matches the port the web frontend proxies to.
const DefaultPort = 4000

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete settings tree.
type Config struct {
	Server    Server    `toml:"server"`
	Paths     Paths     `toml:"paths"`
	Render    Render    `toml:"render"`
	Text      Text      `toml:"text"`
	Retention Retention `toml:"retention"`
	Cache     Cache     `toml:"cache"`
	Mongo     Mongo     `toml:"mongo"`
	Log       Log       `toml:"log"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// BaseURL is the public origin used to build absolute share links.
	BaseURL string `toml:"base_url"`

	// ArtifactURL is the path prefix generated cards are served under.
	ArtifactURL string `toml:"artifact_url"`

	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Addr returns host:port for the HTTP listener.
func (s Server) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

type Paths struct {
	Templates string `toml:"templates"`
	Generated string `toml:"generated"`
}

type Render struct {
	// Backend is auto, rsvg or vector.
	Backend string `toml:"backend"`
	// Format is the default artifact format, png or jpeg.
	Format string `toml:"format"`
}

type Text struct {
	MaxLen int `toml:"max_len"`
}

type Retention struct {
	MaxAge   Duration `toml:"max_age"`
	Interval Duration `toml:"interval"`
}

type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// Options converts the section for cache.Open.
func (c Cache) Options() cache.Options {
	return cache.Options{Backend: c.Backend, Dir: c.Dir, RedisURL: c.RedisURL}
}

type Mongo struct {
	URI        string   `toml:"uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Timeout    Duration `toml:"timeout"`
}

// Record converts the section for record.Init.
func (m Mongo) Record() record.Config {
	return record.Config{URI: m.URI, Database: m.Database, Collection: m.Collection, Timeout: m.Timeout.Duration}
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         DefaultPort,
			ArtifactURL:  artifact.DefaultBaseURL,
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
		Paths:     Paths{Templates: "templates", Generated: "generated"},
		Render:    Render{Backend: render.BackendAuto, Format: string(artifact.FormatPNG)},
		Text:      Text{MaxLen: pipeline.DefaultMaxTextLen},
		Retention: Retention{MaxAge: Duration{artifact.DefaultRetention}, Interval: Duration{time.Hour}},
		Cache:     Cache{Backend: cache.BackendNone},
		Mongo: Mongo{
			Database:   record.DefaultDatabase,
			Collection: record.DefaultCollection,
			Timeout:    Duration{record.DefaultTimeout},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (or DefaultFile when path is empty and present) on top
// of the defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		return dst.UnmarshalText([]byte(v))
	}

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	str("GREETCARD_HOST", &c.Server.Host)
	str("GREETCARD_BASE_URL", &c.Server.BaseURL)
	str("GREETCARD_TEMPLATES_DIR", &c.Paths.Templates)
	str("GREETCARD_GENERATED_DIR", &c.Paths.Generated)
	str("GREETCARD_RENDER_BACKEND", &c.Render.Backend)
	str("GREETCARD_FORMAT", &c.Render.Format)
	if err := num("GREETCARD_MAX_TEXT_LEN", &c.Text.MaxLen); err != nil {
		return err
	}
	if err := dur("GREETCARD_RETENTION", &c.Retention.MaxAge); err != nil {
		return fmt.Errorf("GREETCARD_RETENTION: %w", err)
	}
	str("GREETCARD_CACHE_BACKEND", &c.Cache.Backend)
	str("GREETCARD_CACHE_DIR", &c.Cache.Dir)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("MONGODB_URI", &c.Mongo.URI)
	str("GREETCARD_MONGODB_DATABASE", &c.Mongo.Database)
	str("GREETCARD_LOG_LEVEL", &c.Log.Level)

	// A Redis URL alone is enough to turn the shared cache on.
	if c.Cache.RedisURL != "" && (c.Cache.Backend == "" || c.Cache.Backend == cache.BackendNone) {
		c.Cache.Backend = cache.BackendRedis
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Paths.Templates == "" || c.Paths.Generated == "" {
		return fmt.Errorf("paths.templates and paths.generated are required")
	}
	switch c.Render.Backend {
	case render.BackendAuto, render.BackendRSVG, render.BackendVector:
	default:
		return fmt.Errorf("render.backend %q (want auto, rsvg or vector)", c.Render.Backend)
	}
	if _, err := artifact.ParseFormat(c.Render.Format); err != nil {
		return fmt.Errorf("render.format: %w", err)
	}
	if c.Text.MaxLen <= 0 {
		return fmt.Errorf("text.max_len must be positive")
	}
	if c.Retention.MaxAge.Duration <= 0 || c.Retention.Interval.Duration <= 0 {
		return fmt.Errorf("retention.max_age and retention.interval must be positive")
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return fmt.Errorf("cache.backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.backend redis needs cache.redis_url")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q (want debug, info, warn or error)", c.Log.Level)
	}
	return nil
}

// ResolvePaths makes relative directories absolute against base.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{&c.Paths.Templates, &c.Paths.Generated, &c.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
