// Package overlay builds the vector text layer that is composited over a
// template.
//
// An [Overlay] is canvas-sized and holds one positioned line per layout
// line. [Overlay.SVG] serializes it with bold weight, the slot's font
// preference list, the layout anchor and a middle dominant baseline, so any
// SVG renderer draws lines centered on the coordinates the layout engine
// computed. All text is XML-escaped.
package overlay

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"strconv"

	"github.com/matzehuels/greetcard/pkg/fonts"
	"github.com/matzehuels/greetcard/pkg/layout"
)

// Line is one line of text anchored at (X, Y), Y being its vertical middle.
type Line struct {
	Text string
	X    float64
	Y    float64
}

// Outline is a stroked debug rectangle.
type Outline struct {
	Rect  image.Rectangle
	Color string
}

// Overlay is a text layer sized to a template canvas.
type Overlay struct {
	Width    int
	Height   int
	Lines    []Line
	FontSize float64
	Color    string
	Families string
	Anchor   layout.Anchor
	Outlines []Outline
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithFamilies sets the CSS font preference list.
func WithFamilies(families string) Option {
	return func(o *Overlay) {
		if families != "" {
			o.Families = families
		}
	}
}

// WithOutline adds a stroked rectangle drawn under the text.
func WithOutline(r image.Rectangle, color string) Option {
	return func(o *Overlay) { o.Outlines = append(o.Outlines, Outline{Rect: r, Color: color}) }
}

// New builds the overlay for a layout result on a width×height canvas.
func New(width, height int, res layout.Result, opts ...Option) *Overlay {
	o := &Overlay{
		Width:    width,
		Height:   height,
		Lines:    make([]Line, len(res.Lines)),
		FontSize: res.FontSize,
		Color:    res.Color,
		Families: fonts.FallbackFontFamily,
		Anchor:   res.Anchor,
	}
	for i, text := range res.Lines {
		o.Lines[i] = Line{Text: text, X: res.X, Y: res.LineY[i]}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SVG serializes the overlay.
func (o *Overlay) SVG() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		o.Width, o.Height, o.Width, o.Height)

	buf.WriteString("  <style>\n")
	fmt.Fprintf(&buf, "    .card-text { font-family: %s; font-weight: 700; fill: %s; }\n",
		EscapeXML(o.Families), EscapeXML(o.Color))
	buf.WriteString("  </style>\n")

	for _, ol := range o.Outlines {
		fmt.Fprintf(&buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			ol.Rect.Min.X, ol.Rect.Min.Y, ol.Rect.Dx(), ol.Rect.Dy(), EscapeXML(ol.Color))
	}

	if len(o.Lines) > 0 {
		fmt.Fprintf(&buf, `  <text class="card-text" font-size="%s" text-anchor="%s" dominant-baseline="middle">`+"\n",
			num(o.FontSize), o.anchor())
		for _, ln := range o.Lines {
			fmt.Fprintf(&buf, `    <tspan x="%s" y="%s">%s</tspan>`+"\n", num(ln.X), num(ln.Y), EscapeXML(ln.Text))
		}
		buf.WriteString("  </text>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (o *Overlay) anchor() layout.Anchor {
	if o.Anchor == layout.AnchorMiddle {
		return layout.AnchorMiddle
	}
	return layout.AnchorStart
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
