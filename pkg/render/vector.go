package render

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/matzehuels/greetcard/pkg/fonts"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/overlay"
)

// ptPerPx converts pixel font sizes to canvas points. Canvas units are
// millimetres and overlays are drawn at one pixel per millimetre.
const ptPerPx = 72 / 25.4

// Vector rasterizes overlays in-process with the embedded bold face.
type Vector struct {
	once   sync.Once
	family *canvas.FontFamily
	err    error
}

// NewVector returns a pure-Go rasterizer.
func NewVector() *Vector {
	return &Vector{}
}

func (v *Vector) Name() string { return BackendVector }

func (v *Vector) fontFamily() (*canvas.FontFamily, error) {
	v.once.Do(func() {
		family := canvas.NewFontFamily(fonts.FontFamily)
		if err := family.LoadFont(fonts.BoldTTF(), 0, canvas.FontBold); err != nil {
			v.err = err
			return
		}
		v.family = family
	})
	return v.family, v.err
}

// Rasterize draws o. Each line's vertical middle sits on its layout y.
func (v *Vector) Rasterize(ctx context.Context, o *overlay.Overlay) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	family, err := v.fontFamily()
	if err != nil {
		return nil, err
	}

	c := canvas.New(float64(o.Width), float64(o.Height))
	cctx := canvas.NewContext(c)
	cctx.SetCoordSystem(canvas.CartesianIV)

	for _, ol := range o.Outlines {
		cctx.SetFillColor(color.RGBA{})
		cctx.SetStrokeColor(canvas.Hex(ol.Color))
		cctx.SetStrokeWidth(2)
		cctx.DrawPath(float64(ol.Rect.Min.X), float64(ol.Rect.Min.Y),
			canvas.Rectangle(float64(ol.Rect.Dx()), float64(ol.Rect.Dy())))
	}

	if len(o.Lines) > 0 {
		face := family.Face(o.FontSize*ptPerPx, canvas.Hex(o.Color), canvas.FontBold, canvas.FontNormal)
		m := face.Metrics()
		toBaseline := (m.Ascent - m.Descent) / 2

		align := canvas.Left
		if o.Anchor == layout.AnchorMiddle {
			align = canvas.Center
		}
		for _, ln := range o.Lines {
			cctx.DrawText(ln.X, ln.Y+toBaseline, canvas.NewTextLine(face, ln.Text, align))
		}
	}

	return rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace), nil
}
