// Package cache stores derived bytes (template metadata, preview images)
// behind a small key-value interface.
//
// Three backends ship with the package: [NullCache] disables caching,
// [FileCache] keeps entries on local disk for the CLI, and [RedisCache]
// shares entries between server replicas. Keys are built with a [Keyer] so
// every backend sees the same key layout.
//
// A cache is never the source of truth. Callers treat every error as a miss
// and fall back to recomputing.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Default TTLs for cached values.
const (
	// TTLTemplate bounds how long a template's metadata is reused before the
	// file on disk is read again. Keys also carry the file's mtime, so edits
	// through the store are picked up immediately.
	TTLTemplate = 10 * time.Minute

	// TTLPreview bounds how long a rendered preview PNG is kept.
	TTLPreview = time.Hour
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// TemplateKey is the key for a template's parsed metadata. version
	// changes whenever the metadata file changes (its mtime in nanoseconds).
	TemplateKey(templateID string, version int64) string

	// PreviewKey is the key for a rendered preview image.
	PreviewKey(templateID, text string, opts PreviewKeyOpts) string
}

// PreviewKeyOpts are the render inputs that distinguish two previews of the
// same template and text.
type PreviewKeyOpts struct {
	FontSize  float64 `json:"font_size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Debug     bool    `json:"debug,omitempty"`
	PhotoHash string  `json:"photo_hash,omitempty"`
	Version   int64   `json:"version,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TemplateKey returns "template:<id>:<version>".
func (DefaultKeyer) TemplateKey(templateID string, version int64) string {
	return "template:" + templateID + ":" + strconv.FormatInt(version, 10)
}

// PreviewKey returns "preview:<hash>" over every input.
func (DefaultKeyer) PreviewKey(templateID, text string, opts PreviewKeyOpts) string {
	return hashKey("preview", templateID, text, opts)
}

var _ Keyer = DefaultKeyer{}
