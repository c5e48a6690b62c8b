// Package fonts provides the bold face that card text is drawn with.
//
// Cards name a CSS preference list ([FallbackFontFamily]) so renderers with
// system fonts can substitute. Renderers that draw glyphs themselves use the
// embedded Go Bold face, which ships in the binary and needs no installed
// fonts.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// FontFamily is the family name of the embedded face.
const FontFamily = "Go"

// FallbackFontFamily is the CSS family list written into overlays and used
// by the preview when a slot names no family of its own.
const FallbackFontFamily = `'Montserrat', 'Arial', sans-serif`

// Weight is the CSS weight of all card text.
const Weight = "bold"

// BoldTTF returns the embedded TrueType data.
func BoldTTF() []byte {
	return gobold.TTF
}

var (
	boldFont     *truetype.Font
	boldFontErr  error
	boldFontOnce sync.Once
)

// Bold returns the parsed embedded face. It is parsed once.
func Bold() (*truetype.Font, error) {
	boldFontOnce.Do(func() {
		boldFont, boldFontErr = truetype.Parse(gobold.TTF)
	})
	return boldFont, boldFontErr
}

// BoldFace returns the embedded face at sizePx pixels. Faces are not safe
// for concurrent use; callers create one per drawing.
func BoldFace(sizePx float64) (font.Face, error) {
	f, err := Bold()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
