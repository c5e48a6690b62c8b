package layout

import "github.com/matzehuels/greetcard/pkg/errors"

// Result is the complete layout of one piece of text in one slot.
// It is derived on every call and never persisted.
type Result struct {
	Lines      []string  `json:"lines"`
	FontSize   float64   `json:"fontSizeUsed"`
	LineHeight float64   `json:"lineHeight"`
	StartY     float64   `json:"startY"`
	LineY      []float64 `json:"lineY"`
	X          float64   `json:"x"`
	Anchor     Anchor    `json:"anchor"`
	Color      string    `json:"color"`
}

// Option overrides slot defaults for a single Compute call.
type Option func(*computeOpts)

type computeOpts struct {
	fontSize float64
	color    string
}

// WithFontSize overrides the slot font size. Non-positive values are ignored.
func WithFontSize(size float64) Option {
	return func(o *computeOpts) {
		if size > 0 {
			o.fontSize = size
		}
	}
}

// WithColor overrides the slot color. Empty values are ignored.
func WithColor(c string) Option {
	return func(o *computeOpts) {
		if c != "" {
			o.color = c
		}
	}
}

// Compute lays out text in slot.
//
// The effective font size and color are the overrides when given, else the
// slot's own. Text wraps at the slot's MaxWidth, falling back to Width and
// then DefaultMaxWidth. The font is fitted against the slot Height, or twice
// the font size when the slot has no height. The wrapped lines are then
// placed with Place.
func Compute(text string, slot Slot, opts ...Option) (Result, error) {
	o := computeOpts{fontSize: slot.FontSize, color: slot.Color}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fontSize <= 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidSlot, "text slot has no usable font size (%v)", o.fontSize)
	}

	lines, err := WrapLines(text, o.fontSize, wrapWidth(slot))
	if err != nil {
		return Result{}, err
	}

	maxHeight := slot.Height
	if maxHeight == 0 {
		maxHeight = o.fontSize * 2
	}
	size := FitFontSize(len(lines), o.fontSize, maxHeight)

	p, err := Place(lines, size, slot)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Lines:      lines,
		FontSize:   size,
		LineHeight: p.LineHeight,
		StartY:     p.StartY,
		LineY:      p.LineY,
		X:          p.X,
		Anchor:     p.Anchor,
		Color:      o.color,
	}, nil
}

func wrapWidth(slot Slot) float64 {
	switch {
	case slot.MaxWidth > 0:
		return slot.MaxWidth
	case slot.Width > 0:
		return slot.Width
	default:
		return DefaultMaxWidth
	}
}
