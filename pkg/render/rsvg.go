package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/greetcard/pkg/overlay"
)

const rsvgBinary = "rsvg-convert"

var errRSVGMissing = errors.New("rsvg backend requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")

// RSVG rasterizes overlays with rsvg-convert.
type RSVG struct {
	binary string
}

// NewRSVG returns an RSVG rasterizer using rsvg-convert from PATH.
func NewRSVG() *RSVG {
	return &RSVG{binary: rsvgBinary}
}

func (r *RSVG) Name() string { return BackendRSVG }

// Rasterize renders o at its own pixel size. The command is killed when ctx
// ends.
func (r *RSVG) Rasterize(ctx context.Context, o *overlay.Overlay) (image.Image, error) {
	png, err := r.convert(ctx, o.SVG(),
		"-f", "png",
		"-w", strconv.Itoa(o.Width),
		"-h", strconv.Itoa(o.Height),
	)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("decode rsvg-convert output: %w", err)
	}
	return img, nil
}

func (r *RSVG) convert(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(r.binary); err != nil {
		return nil, errRSVGMissing
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
