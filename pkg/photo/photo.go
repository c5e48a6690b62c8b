// Package photo prepares a user photo for a template's photo slot.
//
// Both renderers use [Prepare], so the preview and the artifact crop and
// mask the photo identically: cover-fit to the slot size with a centered
// crop, then clip to a circle of radius min(w, h)/2 when the slot shape is
// circle.
package photo

import (
	"bytes"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/template"
)

// MaxBytes bounds accepted photo uploads.
const MaxBytes = 5 << 20

// Decode reads a JPEG, PNG or GIF photo, honouring EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePhotoProcessing, err, "decode photo")
	}
	return img, nil
}

// DecodeBytes decodes an in-memory photo.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) > MaxBytes {
		return nil, errors.New(errors.ErrCodePhotoProcessing, "photo exceeds %d bytes", MaxBytes)
	}
	return Decode(bytes.NewReader(data))
}

// Fit scales img to cover w×h and crops the overflow equally from both
// sides.
func Fit(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// CircleMask clips img to the largest circle centered in its bounds. Pixels
// outside the circle become transparent.
func CircleMask(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dc := gg.NewContext(w, h)
	dc.DrawCircle(float64(w)/2, float64(h)/2, math.Min(float64(w), float64(h))/2)
	dc.Clip()
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	return dc.Image()
}

// Prepare fits img to slot and applies the slot's shape. It returns the
// image and the point its top-left corner goes to on the template.
func Prepare(img image.Image, slot template.PhotoSlot) (image.Image, image.Point, error) {
	r := slot.Bounds()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, image.Point{}, errors.New(errors.ErrCodeInvalidSlot, "photo slot has no area")
	}
	var out image.Image = Fit(img, r.Dx(), r.Dy())
	if slot.Shape == template.ShapeCircle {
		out = CircleMask(out)
	}
	return out, r.Min, nil
}
