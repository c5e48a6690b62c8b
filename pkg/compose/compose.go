// Package compose renders finished cards.
//
// A [Compositor] resolves the template, prepares the optional photo, runs
// the layout engine with the slot's (or the request's) font size and color,
// rasterizes the resulting text overlay and composites background, photo
// and text in that order. [Compositor.Render] then encodes the card and
// stores it as an artifact.
//
// The compositor computes text positions only through
// [github.com/matzehuels/greetcard/pkg/layout.Compute], the same call the
// live preview makes, so both renderers agree on every line.
package compose

import (
	"context"
	"image"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/observability"
	"github.com/matzehuels/greetcard/pkg/overlay"
	"github.com/matzehuels/greetcard/pkg/photo"
	"github.com/matzehuels/greetcard/pkg/render"
	"github.com/matzehuels/greetcard/pkg/template"
)

// JPEGQuality is the fixed quality of JPEG artifacts.
const JPEGQuality = 90

// Request describes one card.
type Request struct {
	TemplateID string
	Text       string

	// FontSize and Color override the slot defaults when non-zero.
	FontSize float64
	Color    string

	// Photo holds encoded image bytes. It is ignored for templates without
	// a photo slot.
	Photo []byte

	Format artifact.Format

	// Debug outlines the photo and text slots.
	Debug bool
}

// Card is a composited card held in memory.
type Card struct {
	Image      *image.NRGBA
	Layout     layout.Result
	Descriptor *template.Descriptor
}

// Compositor renders cards from templates.
type Compositor struct {
	templates *template.Store
	artifacts *artifact.Store
	raster    render.Rasterizer
	logger    *log.Logger
}

// New returns a compositor. artifacts may be nil for callers that only use
// Compose.
func New(templates *template.Store, artifacts *artifact.Store, raster render.Rasterizer, logger *log.Logger) *Compositor {
	if raster == nil {
		raster = render.NewVector()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Compositor{templates: templates, artifacts: artifacts, raster: raster, logger: logger}
}

// Render composes the card and stores it.
func (c *Compositor) Render(ctx context.Context, req Request) (a *artifact.Artifact, err error) {
	if c.artifacts == nil {
		return nil, errors.New(errors.ErrCodeInternal, "compositor has no artifact store")
	}

	start := time.Now()
	observability.Generation().OnGenerateStart(ctx, req.TemplateID)
	defer func() {
		observability.Generation().OnGenerateComplete(ctx, req.TemplateID, time.Since(start), err)
	}()

	card, err := c.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	a, err = c.artifacts.Write(ctx, req.Format, func(w io.Writer) error {
		return Encode(w, card.Image, req.Format)
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("generated card",
		"template", card.Descriptor.ID,
		"lines", len(card.Layout.Lines),
		"font_size", card.Layout.FontSize,
		"artifact", a.Name,
		"duration", time.Since(start))
	return a, nil
}

// Compose builds the card in memory without storing it.
func (c *Compositor) Compose(ctx context.Context, req Request) (*Card, error) {
	if req.Color != "" {
		c, err := errors.NormalizeColor(req.Color)
		if err != nil {
			return nil, err
		}
		req.Color = c
	}

	desc, err := c.templates.Descriptor(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	meta := desc.Meta

	var (
		background image.Image
		portrait   image.Image
		portraitAt image.Point
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := decodeTemplate(desc.ImagePath)
		if err != nil {
			return err
		}
		background = img
		return gctx.Err()
	})
	if len(req.Photo) > 0 {
		if meta.PhotoSlot.Enabled() {
			g.Go(func() error {
				img, err := photo.DecodeBytes(req.Photo)
				if err != nil {
					return err
				}
				portrait, portraitAt, err = photo.Prepare(img, meta.PhotoSlot)
				return err
			})
		} else {
			c.logger.Debug("template has no photo slot, ignoring photo", "template", desc.ID)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := layout.Compute(req.Text, meta.TextSlot.Slot(),
		layout.WithFontSize(req.FontSize),
		layout.WithColor(req.Color))
	if err != nil {
		return nil, err
	}
	observability.Generation().OnLayout(ctx, desc.ID, len(res.Lines), res.FontSize)

	b := background.Bounds()
	opts := []overlay.Option{overlay.WithFamilies(meta.TextSlot.Families())}
	if req.Debug {
		opts = append(opts, DebugOutlines(meta)...)
	}
	text, err := c.raster.Rasterize(ctx, overlay.New(b.Dx(), b.Dy(), res, opts...))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterize text with %s", c.raster.Name())
	}

	canvas := imaging.Clone(background)
	if portrait != nil {
		canvas = imaging.Overlay(canvas, portrait, portraitAt, 1.0)
	}
	canvas = imaging.Overlay(canvas, text, image.Pt(0, 0), 1.0)

	return &Card{Image: canvas, Layout: res, Descriptor: desc}, nil
}

// Debug outline colors.
const (
	PhotoOutlineColor = "#ff0000"
	TextOutlineColor  = "#0000ff"
)

// DebugOutlines returns outlines of the photo slot (red) and text slot
// (blue).
func DebugOutlines(meta template.Meta) []overlay.Option {
	var opts []overlay.Option
	if meta.PhotoSlot.Enabled() {
		opts = append(opts, overlay.WithOutline(meta.PhotoSlot.Bounds(), PhotoOutlineColor))
	}
	return append(opts, overlay.WithOutline(meta.TextSlot.Bounds(), TextOutlineColor))
}

// Encode writes img in format. JPEG uses JPEGQuality.
func Encode(w io.Writer, img image.Image, format artifact.Format) error {
	if format == artifact.FormatJPEG {
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	}
	return imaging.Encode(w, img, imaging.PNG)
}

func decodeTemplate(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateNotFound, err, "open template")
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "decode template %s", path)
	}
	return img, nil
}
