// Package artifact stores generated cards.
//
// Artifacts live in one flat directory as <uuid>.<ext>. A write goes to a
// hidden temp file that is renamed into place once complete, so a
// half-written card is never reachable under its public name. [Store.Sweep]
// deletes artifacts past their retention age and [Sweeper] repeats that on
// an interval.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/observability"
)

// Format is an artifact image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat maps a user-supplied name to a Format. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported output format %q (want png or jpeg)", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// DefaultRetention is how long artifacts are kept.
const DefaultRetention = 24 * time.Hour

// DefaultBaseURL is the URL prefix artifacts are served under.
const DefaultBaseURL = "/api/generated"

const tempPrefix = ".tmp-"

// Artifact is one stored card.
type Artifact struct {
	Name      string    `json:"name"`
	FilePath  string    `json:"filePath"`
	PublicURL string    `json:"url"`
	Format    Format    `json:"format"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store writes artifacts into a directory.
type Store struct {
	dir     string
	baseURL string
	logger  *log.Logger
}

// NewStore opens dir, creating it if needed. baseURL prefixes public URLs;
// empty means DefaultBaseURL.
func NewStore(dir, baseURL string, logger *log.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// URL returns the public URL of the artifact called name.
func (s *Store) URL(name string) string {
	return s.baseURL + "/" + name
}

// Write stores a new artifact whose bytes are produced by encode.
func (s *Store) Write(ctx context.Context, format Format, encode func(io.Writer) error) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create artifact")
	}
	tmpName := tmp.Name()
	fail := func(err error) (*Artifact, error) {
		tmp.Close()
		os.Remove(tmpName)
		return nil, err
	}

	if err := encode(tmp); err != nil {
		return fail(errors.Wrap(errors.ErrCodeRenderFailed, err, "encode artifact"))
	}
	if err := tmp.Sync(); err != nil {
		return fail(errors.Wrap(errors.ErrCodeInternal, err, "sync artifact"))
	}
	info, err := tmp.Stat()
	if err != nil {
		return fail(errors.Wrap(errors.ErrCodeInternal, err, "stat artifact"))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "close artifact")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "chmod artifact")
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmpName)
		return nil, err
	}

	name := uuid.NewString() + format.Ext()
	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "publish artifact")
	}

	s.logger.Debug("stored artifact", "name", name, "bytes", info.Size())
	return &Artifact{
		Name:      name,
		FilePath:  path,
		PublicURL: s.URL(name),
		Format:    format,
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}, nil
}

// Path returns the file path of a stored artifact. Names that are not a
// bare file name in the directory are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid artifact name %q", name)
	}
	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", errors.New(errors.ErrCodeNotFound, "artifact %q not found", name)
	}
	return p, nil
}

// Sweep deletes artifacts and abandoned temp files whose modification time
// is older than maxAge. A non-positive maxAge uses DefaultRetention. It
// returns the number of files removed.
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultRetention
	}
	start := time.Now()
	removed, err := s.sweep(ctx, start.Add(-maxAge))
	observability.Storage().OnSweep(ctx, removed, time.Since(start), err)
	return removed, err
}

func (s *Store) sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove expired artifact", "name", entry.Name(), "err", err)
			continue
		}
		s.logger.Debug("removed expired artifact", "name", entry.Name())
		removed++
	}
	return removed, nil
}
