package template

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/observability"
)

// ImageExtensions are probed in order when resolving a template id.
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// DefaultTextColor fills text when a slot names no color.
const DefaultTextColor = "#000000"

// Descriptor is everything a renderer needs to know about one template.
type Descriptor struct {
	ID        string `json:"templateId"`
	ImagePath string `json:"imagePath"`
	Meta      Meta   `json:"meta"`

	// HasMeta is false when Meta is DefaultMeta because no metadata file
	// exists.
	HasMeta bool `json:"hasMeta"`
}

// CheckResult describes a resolved template image.
type CheckResult struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Store reads templates from one flat directory. It is safe for concurrent
// use; the only shared state is the metadata cache.
type Store struct {
	dir    string
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCache caches parsed metadata in c under keys from keyer.
func WithCache(c cache.Cache, keyer cache.Keyer) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.cache = c
		}
		if keyer != nil {
			s.keyer = keyer
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a store for templates in dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the templates directory.
func (s *Store) Dir() string { return s.dir }

// Normalize strips a known image extension from id and validates it.
func Normalize(id string) (string, error) {
	lower := strings.ToLower(id)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			id = id[:len(id)-len(ext)]
			break
		}
	}
	if err := errors.ValidateTemplateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve returns the image path for id, probing ImageExtensions in order.
func (s *Store) Resolve(id string) (string, error) {
	base, err := Normalize(id)
	if err != nil {
		return "", err
	}
	for _, ext := range ImageExtensions {
		p := filepath.Join(s.dir, base+ext)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", errors.New(errors.ErrCodeTemplateNotFound, "template %q not found", base)
}

// Check resolves id and reports the image size. Empty images fail.
func (s *Store) Check(id string) (CheckResult, error) {
	p, err := s.Resolve(id)
	if err != nil {
		return CheckResult{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return CheckResult{}, errors.Wrap(errors.ErrCodeTemplateNotFound, err, "stat template %q", id)
	}
	if info.Size() == 0 {
		return CheckResult{}, errors.New(errors.ErrCodeTemplateNotFound, "template %q is empty", id)
	}
	return CheckResult{Path: p, Size: info.Size()}, nil
}

// List returns the ids of all templates in the directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read templates directory")
	}
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !isImageExt(ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isImageExt(ext string) bool {
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *Store) metaPath(base string) string {
	return filepath.Join(s.dir, base+".json")
}

// Descriptor resolves id and loads its metadata. A template without a
// metadata file gets DefaultMeta. Malformed metadata fails with
// METADATA_PARSE.
func (s *Store) Descriptor(ctx context.Context, id string) (*Descriptor, error) {
	imagePath, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	base, _ := Normalize(id)

	meta, found, err := s.loadMeta(ctx, base)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Debug("no template metadata, using defaults", "template", base)
		meta = DefaultMeta()
	}
	if meta.TextSlot.Color == "" {
		meta.TextSlot.Color = DefaultTextColor
	}
	if err := meta.Normalize(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadataParse, err, "invalid metadata for %s", base)
	}

	return &Descriptor{ID: base, ImagePath: imagePath, Meta: meta, HasMeta: found}, nil
}

// Version returns a number that changes whenever the template image or its
// metadata file changes: the later of the two mtimes, in nanoseconds.
func (s *Store) Version(id string) (int64, error) {
	imagePath, err := s.Resolve(id)
	if err != nil {
		return 0, err
	}
	base, _ := Normalize(id)

	var v int64
	for _, p := range []string{imagePath, s.metaPath(base)} {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); t > v {
			v = t
		}
	}
	return v, nil
}

// Meta returns the stored metadata for id. It fails with NOT_FOUND when the
// template has no metadata file.
func (s *Store) Meta(ctx context.Context, id string) (Meta, error) {
	base, err := Normalize(id)
	if err != nil {
		return Meta{}, err
	}
	meta, found, err := s.loadMeta(ctx, base)
	if err != nil {
		return Meta{}, err
	}
	if !found {
		return Meta{}, errors.New(errors.ErrCodeNotFound, "template %q has no metadata", base)
	}
	return meta, nil
}

// UpdateMeta replaces the metadata file of id. Only existing files are
// overwritten; new metadata files are never created here.
func (s *Store) UpdateMeta(ctx context.Context, id string, meta Meta) error {
	base, err := Normalize(id)
	if err != nil {
		return err
	}
	path := s.metaPath(base)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeNotFound, "template %q has no metadata", base)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "stat metadata")
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
	}
	if err := writeFileAtomic(path, data, info.Mode().Perm()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write metadata")
	}

	oldKey := s.keyer.TemplateKey(base, info.ModTime().UnixNano())
	if err := s.cache.Delete(ctx, oldKey); err != nil {
		s.logger.Warn("invalidate template cache", "template", base, "err", err)
	}
	s.logger.Info("updated template metadata", "template", base)
	return nil
}

// loadMeta reads and parses <base>.json, going through the cache. found is
// false when the file does not exist.
func (s *Store) loadMeta(ctx context.Context, base string) (Meta, bool, error) {
	path := s.metaPath(base)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, errors.Wrap(errors.ErrCodeInternal, err, "stat metadata")
	}

	key := s.keyer.TemplateKey(base, info.ModTime().UnixNano())
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var meta Meta
		if err := json.Unmarshal(data, &meta); err == nil {
			observability.Cache().OnCacheHit(ctx, "template")
			return meta, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "template")

	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, false, errors.Wrap(errors.ErrCodeInternal, err, "read metadata")
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, false, errors.Wrap(errors.ErrCodeMetadataParse, err, "parse metadata for %q", base)
	}

	if err := s.cache.Set(ctx, key, data, cache.TTLTemplate); err == nil {
		observability.Cache().OnCacheSet(ctx, "template", len(data))
	}
	return meta, true, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".meta-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
