package template

import (
	"image"
	"math"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/fonts"
	"github.com/matzehuels/greetcard/pkg/layout"
)

// Shape is the outline a photo is clipped to.
type Shape string

const (
	ShapeRect   Shape = "rect"
	ShapeCircle Shape = "circle"
)

// TextSlot is the region text is laid out in, in template pixels. Zero
// Width, Height and MaxWidth are unset.
type TextSlot struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	MaxWidth   float64 `json:"maxWidth,omitempty"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	TextAlign  string  `json:"textAlign,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
}

// Slot converts the text slot into layout input.
func (s TextSlot) Slot() layout.Slot {
	align := layout.AlignStart
	if s.TextAlign == string(layout.AlignCenter) {
		align = layout.AlignCenter
	}
	return layout.Slot{
		X:        s.X,
		Y:        s.Y,
		Width:    s.Width,
		Height:   s.Height,
		MaxWidth: s.MaxWidth,
		FontSize: s.FontSize,
		Color:    s.Color,
		Align:    align,
	}
}

// Families returns the CSS family list text in this slot is set in.
func (s TextSlot) Families() string {
	if s.FontFamily != "" {
		return s.FontFamily + ", sans-serif"
	}
	return fonts.FallbackFontFamily
}

// Bounds returns the slot rectangle, using the wrap width and twice the
// font size when width or height are unset. Debug overlays outline it.
func (s TextSlot) Bounds() image.Rectangle {
	w := s.Width
	if w == 0 {
		w = s.MaxWidth
	}
	if w == 0 {
		w = layout.DefaultMaxWidth
	}
	h := s.Height
	if h == 0 {
		h = s.FontSize * 2
	}
	return rect(s.X, s.Y, w, h)
}

// PhotoSlot is the region a photo is cover-fitted into.
type PhotoSlot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Shape  Shape   `json:"shape,omitempty"`
}

// Enabled reports whether the slot can hold a photo.
func (p PhotoSlot) Enabled() bool { return p.Width > 0 && p.Height > 0 }

// Bounds returns the slot rectangle in whole pixels.
func (p PhotoSlot) Bounds() image.Rectangle {
	return rect(p.X, p.Y, p.Width, p.Height)
}

func rect(x, y, w, h float64) image.Rectangle {
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	return image.Rect(x0, y0, x0+int(math.Round(w)), y0+int(math.Round(h)))
}

// Meta is the slot metadata stored next to a template image as <id>.json.
type Meta struct {
	TextSlot  TextSlot  `json:"textSlot"`
	PhotoSlot PhotoSlot `json:"photoSlot"`
}

// DefaultMeta is used for templates without a metadata file.
func DefaultMeta() Meta {
	return Meta{
		TextSlot: TextSlot{
			X:        800,
			Y:        200,
			MaxWidth: 1200,
			FontSize: 72,
			Color:    "#0b3d91",
		},
		PhotoSlot: PhotoSlot{
			X:      200,
			Y:      250,
			Width:  400,
			Height: 400,
			Shape:  ShapeCircle,
		},
	}
}

// Normalize resolves a CSS color name in the text slot to hex, then
// validates m.
func (m *Meta) Normalize() error {
	if m.TextSlot.Color != "" {
		c, err := errors.NormalizeColor(m.TextSlot.Color)
		if err != nil {
			return err
		}
		m.TextSlot.Color = c
	}
	return m.Validate()
}

// Validate checks the metadata for values no renderer can draw.
func (m Meta) Validate() error {
	ts := m.TextSlot
	if ts.FontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidSlot, "textSlot.fontSize must be positive")
	}
	if ts.Width < 0 || ts.Height < 0 || ts.MaxWidth < 0 {
		return errors.New(errors.ErrCodeInvalidSlot, "textSlot dimensions cannot be negative")
	}
	switch ts.TextAlign {
	case "", "left", "start":
	case "center":
		if ts.Width == 0 {
			return errors.New(errors.ErrCodeInvalidSlot, "centered textSlot must declare a width")
		}
	default:
		return errors.New(errors.ErrCodeInvalidSlot, "unsupported textSlot.textAlign %q", ts.TextAlign)
	}
	if ts.Color != "" {
		if err := errors.ValidateColor(ts.Color); err != nil {
			return err
		}
	}

	ps := m.PhotoSlot
	if ps.Width < 0 || ps.Height < 0 {
		return errors.New(errors.ErrCodeInvalidSlot, "photoSlot dimensions cannot be negative")
	}
	switch ps.Shape {
	case "", ShapeRect, ShapeCircle:
	default:
		return errors.New(errors.ErrCodeInvalidSlot, "unsupported photoSlot.shape %q", ps.Shape)
	}
	return nil
}
