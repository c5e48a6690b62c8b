package render

import (
	"context"
	"fmt"
	"image"
	"os/exec"

	"github.com/matzehuels/greetcard/pkg/overlay"
)

// Backend names accepted by New.
const (
	BackendAuto   = "auto"
	BackendRSVG   = "rsvg"
	BackendVector = "vector"
)

// Rasterizer draws an overlay onto a transparent canvas of the overlay's
// size.
type Rasterizer interface {
	Rasterize(ctx context.Context, o *overlay.Overlay) (image.Image, error)
	Name() string
}

// New returns the rasterizer for backend. An empty backend means auto.
func New(backend string) (Rasterizer, error) {
	switch backend {
	case "", BackendAuto:
		if RSVGAvailable() {
			return NewRSVG(), nil
		}
		return NewVector(), nil
	case BackendRSVG:
		if !RSVGAvailable() {
			return nil, errRSVGMissing
		}
		return NewRSVG(), nil
	case BackendVector:
		return NewVector(), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q (want auto, rsvg or vector)", backend)
	}
}

// RSVGAvailable reports whether rsvg-convert is on PATH.
func RSVGAvailable() bool {
	_, err := exec.LookPath(rsvgBinary)
	return err == nil
}
