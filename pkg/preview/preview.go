// Package preview draws live card previews.
//
// [Renderer.Draw] issues canvas-2D-style calls against a [Surface]: it sizes
// the surface to the template, draws the template and optional photo, then
// fills each line at the coordinates from
// [github.com/matzehuels/greetcard/pkg/layout.Compute]. The compositor in
// [github.com/matzehuels/greetcard/pkg/compose] makes the same Compute call,
// so a preview and the generated card always agree on wrapping, font size
// and line positions. Previews are never stored as artifacts.
package preview

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/fonts"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/observability"
	"github.com/matzehuels/greetcard/pkg/photo"
	"github.com/matzehuels/greetcard/pkg/template"
)

// Debug outline colors, matching the compositor's.
const (
	photoOutline = "#ff0000"
	textOutline  = "#0000ff"
)

// Options are the per-draw inputs besides the text.
type Options struct {
	FontSize float64
	Color    string
	Photo    image.Image
	Debug    bool
}

// Renderer draws previews. The zero value is ready to use.
type Renderer struct {
	Logger *log.Logger
}

// Draw paints one preview frame onto s and returns the layout it used.
func (r *Renderer) Draw(s Surface, desc *template.Descriptor, tmpl image.Image, text string, opts Options) (layout.Result, error) {
	meta := desc.Meta
	res, err := layout.Compute(text, meta.TextSlot.Slot(),
		layout.WithFontSize(opts.FontSize),
		layout.WithColor(opts.Color))
	if err != nil {
		return layout.Result{}, err
	}

	b := tmpl.Bounds()
	s.Resize(b.Dx(), b.Dy())
	s.DrawImage(tmpl, 0, 0)

	if opts.Photo != nil && meta.PhotoSlot.Enabled() {
		img, at, err := photo.Prepare(opts.Photo, meta.PhotoSlot)
		if err != nil {
			return layout.Result{}, err
		}
		s.DrawImage(img, at.X, at.Y)
	}

	if opts.Debug {
		s.SetLineWidth(2)
		if meta.PhotoSlot.Enabled() {
			s.SetStrokeStyle(photoOutline)
			strokeRect(s, meta.PhotoSlot.Bounds())
		}
		s.SetStrokeStyle(textOutline)
		strokeRect(s, meta.TextSlot.Bounds())
	}

	s.SetFont(FontShorthand(res.FontSize, meta.TextSlot.Families()))
	s.SetFillStyle(res.Color)
	s.SetTextAlign(canvasAlign(res.Anchor))
	s.SetTextBaseline("middle")
	for i, line := range res.Lines {
		s.FillText(line, res.X, res.LineY[i])
	}
	return res, nil
}

func strokeRect(s Surface, r image.Rectangle) {
	s.StrokeRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

// FontShorthand builds the CSS font value for text at sizePx.
func FontShorthand(sizePx float64, families string) string {
	if families == "" {
		families = fonts.FallbackFontFamily
	}
	return fonts.Weight + " " + strconv.FormatFloat(sizePx, 'f', -1, 64) + "px " + families
}

func canvasAlign(a layout.Anchor) string {
	if a == layout.AnchorMiddle {
		return "center"
	}
	return "left"
}

// Request asks for one rendered preview.
type Request struct {
	TemplateID string
	Text       string
	FontSize   float64
	Color      string
	Photo      []byte
	Debug      bool
}

// Frame is a rendered preview.
type Frame struct {
	Surface *GGSurface
	Layout  layout.Result
}

// Render loads the template from store and draws a preview onto a new
// GGSurface.
func (r *Renderer) Render(ctx context.Context, store *template.Store, req Request) (f *Frame, err error) {
	start := time.Now()
	defer func() {
		observability.Generation().OnPreview(ctx, req.TemplateID, time.Since(start), err)
	}()

	if req.Color != "" {
		c, err := errors.NormalizeColor(req.Color)
		if err != nil {
			return nil, err
		}
		req.Color = c
	}
	desc, err := store.Descriptor(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	tmpl, err := imaging.Open(desc.ImagePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "decode template %s", desc.ImagePath)
	}

	opts := Options{FontSize: req.FontSize, Color: req.Color, Debug: req.Debug}
	if len(req.Photo) > 0 {
		if opts.Photo, err = photo.DecodeBytes(req.Photo); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := NewGGSurface()
	res, err := r.Draw(s, desc, tmpl, req.Text, opts)
	if err != nil {
		return nil, err
	}
	r.logger().Debug("rendered preview", "template", desc.ID, "lines", len(res.Lines), "font_size", res.FontSize)
	return &Frame{Surface: s, Layout: res}, nil
}

func (r *Renderer) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// String describes a layout in one line, for status output.
func String(res layout.Result) string {
	return fmt.Sprintf("%d line(s) at %vpx, startY %v", len(res.Lines), res.FontSize, res.StartY)
}
