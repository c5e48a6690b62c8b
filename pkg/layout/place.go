package layout

import (
	"math"

	"github.com/matzehuels/greetcard/pkg/errors"
)

// Align is the horizontal alignment declared by a text slot.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
)

// Anchor is the horizontal anchor a renderer draws each line with. The
// values match SVG text-anchor.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
)

// Slot is a text slot in template pixel space.
// Zero Width, Height or MaxWidth mean the dimension is not declared.
type Slot struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	MaxWidth float64
	FontSize float64
	Color    string
	Align    Align
}

// Centered reports whether the slot asks for centered text.
func (s Slot) Centered() bool { return s.Align == AlignCenter }

// Placement holds the vertical and horizontal positions of a block of lines.
type Placement struct {
	LineHeight float64
	StartY     float64
	LineY      []float64 // vertical middle of each line box
	X          float64
	Anchor     Anchor
}

// Place positions lines set at fontSize inside slot.
//
// The line height is fontSize × LineHeightMultiplier rounded to whole
// pixels. The block is centered vertically within the slot height (or
// within its own height when the slot declares none) and never starts above
// the slot top. Centered slots anchor at their horizontal midpoint and must
// declare a width; all other slots anchor at slot.X.
func Place(lines []string, fontSize float64, slot Slot) (Placement, error) {
	if fontSize <= 0 || math.IsNaN(fontSize) {
		return Placement{}, errors.New(errors.ErrCodeInvalidSlot, "font size must be positive, got %v", fontSize)
	}
	if slot.Height < 0 || slot.Width < 0 {
		return Placement{}, errors.New(errors.ErrCodeInvalidSlot, "slot dimensions cannot be negative (width=%v, height=%v)", slot.Width, slot.Height)
	}

	n := float64(len(lines))
	lineHeight := roundHalfUp(fontSize * LineHeightMultiplier)

	slotHeight := slot.Height
	if slotHeight == 0 {
		slotHeight = n * fontSize * LineHeightMultiplier
	}
	startY := slot.Y + math.Max(0, roundHalfUp((slotHeight-n*lineHeight)/2))

	lineY := make([]float64, len(lines))
	for i := range lines {
		lineY[i] = startY + float64(i)*lineHeight + lineHeight/2
	}

	p := Placement{
		LineHeight: lineHeight,
		StartY:     startY,
		LineY:      lineY,
		X:          slot.X,
		Anchor:     AnchorStart,
	}
	if slot.Centered() {
		if slot.Width == 0 {
			return Placement{}, errors.New(errors.ErrCodeInvalidSlot, "centered text slot must declare a width")
		}
		p.X = slot.X + slot.Width/2
		p.Anchor = AnchorMiddle
	}
	return p, nil
}

// roundHalfUp rounds to the nearest integer with halves going up, the
// rounding used by browser canvas code for the same numbers.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
