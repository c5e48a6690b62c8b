// Package layout computes where card text goes.
//
// # Overview
//
// The layout engine is the contract shared by the two renderers in greetcard:
// the rasterizing compositor ([github.com/matzehuels/greetcard/pkg/compose])
// and the live preview ([github.com/matzehuels/greetcard/pkg/preview]). Both
// call [Compute] with the same text and slot, so the lines, font size and
// coordinates a user previews are exactly the ones written to the artifact.
// The package does no I/O and holds no state.
//
// # Algorithm
//
// Layout runs in three steps:
//
//  1. [WrapLines] breaks text into lines with a greedy fill. Glyph width is
//     estimated as fontSize × [CharWidthRatio] instead of real font metrics,
//     so the result does not depend on which fonts a renderer has installed.
//  2. [FitFontSize] shrinks the font in steps of [FontSizeStep] until the
//     wrapped lines fit the slot height, stopping at [MinFontSize]. The line
//     count from step 1 is reused at every trial size; text is never
//     re-wrapped at the smaller size.
//  3. [Place] centers the block vertically inside the slot and computes one
//     baseline per line. Baselines sit at the vertical middle of each line
//     box, for renderers that draw with a middle baseline.
//
// All three are available separately; [Compute] chains them with the slot
// fallbacks used by both renderers.
//
// # Usage
//
//	slot := layout.Slot{X: 800, Y: 200, MaxWidth: 1200, Height: 300, FontSize: 72, Color: "#0b3d91"}
//	res, err := layout.Compute("Mrs. Eleanor Vance", slot)
//	if err != nil {
//	    return err
//	}
//	for i, line := range res.Lines {
//	    drawText(line, res.X, res.LineY[i], res.FontSize)
//	}
package layout
