package preview

import (
	"fmt"
	"image"
	"io"
	"regexp"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/greetcard/pkg/fonts"
)

// Surface is the subset of the HTML canvas 2D context the preview draws
// with. Method names and argument values follow the canvas API, so a
// browser-side surface can be driven with the same calls.
type Surface interface {
	// Resize sets the drawing buffer size and clears it.
	Resize(width, height int)
	DrawImage(img image.Image, x, y int)

	// SetFont takes a CSS font shorthand such as
	// "bold 72px 'Montserrat', 'Arial', sans-serif".
	SetFont(css string)
	SetFillStyle(color string)
	SetStrokeStyle(color string)
	SetLineWidth(w float64)
	SetTextAlign(align string)
	SetTextBaseline(baseline string)
	FillText(text string, x, y float64)
	StrokeRect(x, y, w, h float64)
}

// GGSurface is a Surface backed by fogleman/gg. Text is set in the
// embedded bold face whatever families the font shorthand names.
type GGSurface struct {
	dc        *gg.Context
	face      font.Face
	fontSize  float64
	fill      string
	stroke    string
	lineWidth float64
	align     string
	baseline  string
}

// NewGGSurface returns a 1×1 surface; Resize it before drawing.
func NewGGSurface() *GGSurface {
	return &GGSurface{
		dc:        gg.NewContext(1, 1),
		fill:      "#000000",
		stroke:    "#000000",
		lineWidth: 1,
		align:     "start",
		baseline:  "alphabetic",
	}
}

func (s *GGSurface) Resize(width, height int) {
	s.dc = gg.NewContext(width, height)
	if s.face != nil {
		s.dc.SetFontFace(s.face)
	}
}

func (s *GGSurface) DrawImage(img image.Image, x, y int) {
	s.dc.DrawImage(img, x, y)
}

var fontSizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)px`)

func (s *GGSurface) SetFont(css string) {
	m := fontSizeRe.FindStringSubmatch(css)
	if m == nil {
		return
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil || size <= 0 || size == s.fontSize {
		return
	}
	face, err := fonts.BoldFace(size)
	if err != nil {
		return
	}
	s.face, s.fontSize = face, size
	s.dc.SetFontFace(face)
}

func (s *GGSurface) SetFillStyle(color string)   { s.fill = color }
func (s *GGSurface) SetStrokeStyle(color string) { s.stroke = color }
func (s *GGSurface) SetLineWidth(w float64)      { s.lineWidth = w }
func (s *GGSurface) SetTextAlign(align string)   { s.align = align }
func (s *GGSurface) SetTextBaseline(b string)    { s.baseline = b }

// FillText draws text anchored at (x, y) per the current align and
// baseline.
func (s *GGSurface) FillText(text string, x, y float64) {
	if s.face == nil {
		return
	}
	s.dc.SetHexColor(s.fill)
	s.dc.DrawStringAnchored(text, x, y+s.baselineOffset(), s.anchorX(), 0)
}

func (s *GGSurface) StrokeRect(x, y, w, h float64) {
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetHexColor(s.stroke)
	s.dc.SetLineWidth(s.lineWidth)
	s.dc.Stroke()
}

func (s *GGSurface) anchorX() float64 {
	switch s.align {
	case "center":
		return 0.5
	case "right", "end":
		return 1
	default:
		return 0
	}
}

// baselineOffset is the distance from y down to the alphabetic baseline.
func (s *GGSurface) baselineOffset() float64 {
	m := s.face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	switch s.baseline {
	case "middle":
		return (ascent - descent) / 2
	case "top", "hanging":
		return ascent
	case "bottom", "ideographic":
		return -descent
	default:
		return 0
	}
}

// Image returns the current drawing buffer.
func (s *GGSurface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the drawing buffer as PNG.
func (s *GGSurface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

var _ Surface = (*GGSurface)(nil)
