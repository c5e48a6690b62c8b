// Package pipeline provides the card generation pipeline for greetcard.
//
// This package sits between the entry points (CLI, HTTP API) and the
// rendering packages. It applies request defaults and validation in one
// place so every entry point behaves the same way.
//
// # Stages
//
//  1. Normalize: trim and truncate the text, default the template id,
//     validate color and output format
//  2. Render: compose the card and store it as an artifact
//  3. Record: hand the greeting to the record keeper in the background
//
// # Usage
//
//	runner := pipeline.NewRunner(templates, compositor, recorder, cache, nil, logger)
//	art, err := runner.Generate(ctx, pipeline.Request{Text: "Mrs. Eleanor Vance"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(art.PublicURL)
//
// [Runner.Layout] and [Runner.Preview] run the same normalization without
// writing an artifact.
package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTemplate is used when a request names no template.
	DefaultTemplate = "teachersday"

	// DefaultMaxTextLen is the longest accepted text, in runes. Longer text
	// is truncated, not rejected.
	DefaultMaxTextLen = 25

	// MinFontSize and MaxFontSize bound font size overrides.
	MinFontSize = 1
	MaxFontSize = 1000
)

// =============================================================================
// Request
// =============================================================================

// Request is one generation, layout or preview request. JSON names match
// the HTTP API form fields.
type Request struct {
	Text       string  `json:"name"`
	TemplateID string  `json:"template,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Format     string  `json:"format,omitempty"`
	Debug      bool    `json:"debug,omitempty"`

	// Photo holds encoded image bytes (multipart uploads only).
	Photo []byte `json:"-"`
}

// Normalize applies defaults and validates r in place. Text is trimmed and
// cut to maxLen runes (DefaultMaxTextLen when maxLen <= 0). Empty text is
// left empty.
func (r *Request) Normalize(maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLen
	}
	r.Text = Truncate(strings.TrimSpace(r.Text), maxLen)
	if err := errors.ValidateText(r.Text); err != nil {
		return err
	}

	r.TemplateID = strings.TrimSpace(r.TemplateID)
	if r.TemplateID == "" {
		r.TemplateID = DefaultTemplate
	}
	if err := errors.ValidateTemplateID(r.TemplateID); err != nil {
		return err
	}

	if r.FontSize != 0 && (r.FontSize < MinFontSize || r.FontSize > MaxFontSize) {
		return errors.New(errors.ErrCodeInvalidInput, "fontSize must be between %d and %d", MinFontSize, MaxFontSize)
	}

	r.Color = strings.TrimSpace(r.Color)
	if r.Color != "" {
		c, err := errors.NormalizeColor(r.Color)
		if err != nil {
			return err
		}
		r.Color = c
	}

	format, err := artifact.ParseFormat(r.Format)
	if err != nil {
		return err
	}
	r.Format = string(format)
	return nil
}

// RequireText rejects a normalized request without text. Generation needs a
// name; layout and preview accept empty text and draw the bare template.
func (r *Request) RequireText() error {
	if r.Text == "" {
		return errors.New(errors.ErrCodeInvalidInput, "name is required")
	}
	return nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
