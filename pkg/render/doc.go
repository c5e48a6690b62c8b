// Package render rasterizes text overlays.
//
// A [Rasterizer] turns an [overlay.Overlay] into a transparent image the
// size of the template canvas. Two backends are available:
//
//   - [RSVG] pipes the overlay SVG through the external rsvg-convert tool
//     (from librsvg). It resolves the overlay's font preference list
//     against installed system fonts.
//   - [Vector] draws the overlay in-process with tdewolff/canvas using the
//     embedded bold face. It needs no external tools.
//
// [New] selects a backend by name; "auto" picks RSVG when rsvg-convert is on
// PATH and Vector otherwise. Both backends place every line at the same
// layout coordinates, so they differ only in glyph shapes.
//
//	r, err := render.New(render.BackendAuto)
//	img, err := r.Rasterize(ctx, overlay.New(w, h, res))
package render
