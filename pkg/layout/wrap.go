package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/greetcard/pkg/errors"
)

// Layout constants. Every renderer must use these exact values; a renderer
// with different numbers will disagree with the artifact.
const (
	// CharWidthRatio estimates the average glyph width as a fraction of the
	// font size.
	CharWidthRatio = 0.6

	// LineHeightMultiplier converts a font size into a line height.
	LineHeightMultiplier = 1.2

	// MinFontSize is the floor for auto-fit shrinking.
	MinFontSize = 10.0

	// FontSizeStep is the decrement applied per auto-fit iteration.
	FontSizeStep = 2.0

	// DefaultMaxWidth is the wrap width used when a slot declares neither
	// maxWidth nor width.
	DefaultMaxWidth = 600.0
)

// MaxCharsPerLine returns how many characters fit on one line of maxWidth
// pixels at fontSize. The result is at least 1 so wrapping always makes
// progress.
func MaxCharsPerLine(fontSize, maxWidth float64) (int, error) {
	if fontSize <= 0 || math.IsNaN(fontSize) || math.IsInf(fontSize, 0) {
		return 0, errors.New(errors.ErrCodeInvalidSlot, "font size must be positive, got %v", fontSize)
	}
	n := math.Floor(maxWidth / (fontSize * CharWidthRatio))
	if math.IsNaN(n) || n < 1 {
		return 1, nil
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(n), nil
}

// WrapLines breaks text into lines no longer than MaxCharsPerLine characters.
//
// Words are separated by runs of whitespace and rejoined with single spaces.
// Lines are filled greedily: a word joins the current line when the joined
// length still fits, otherwise the current line is emitted and the word
// starts a new one. A word longer than the limit is never split and occupies
// its own overflowing line. Empty or blank text yields no lines.
//
// Lengths are counted in runes.
func WrapLines(text string, fontSize, maxWidth float64) ([]string, error) {
	maxChars, err := MaxCharsPerLine(fontSize, maxWidth)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	lines := make([]string, 0, len(words))
	cur := ""
	for _, w := range words {
		candidate := strings.TrimSpace(cur + " " + w)
		if utf8.RuneCountInString(candidate) <= maxChars {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines, nil
}

// FitFontSize shrinks initial by FontSizeStep until lineCount lines at
// LineHeightMultiplier spacing fit within maxHeight, or the size reaches
// MinFontSize. The last step is clamped so the result never drops below
// MinFontSize unless initial already was below it, in which case initial is
// returned unchanged.
//
// lineCount must come from wrapping at the initial size; it is deliberately
// not recomputed for the smaller trial sizes.
func FitFontSize(lineCount int, initial, maxHeight float64) float64 {
	size := initial
	for float64(lineCount)*(size*LineHeightMultiplier) > maxHeight && size > MinFontSize {
		size = math.Max(size-FontSizeStep, MinFontSize)
	}
	return size
}
