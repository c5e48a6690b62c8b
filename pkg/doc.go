// Package pkg provides the libraries behind greetcard, a greeting card
// renderer.
//
// # Overview
//
// A card is a template image with a text slot (and optionally a photo slot)
// described by metadata next to the image. A name is wrapped, sized and
// positioned inside the text slot, then either composited into a stored
// artifact or drawn onto a preview surface. Both paths share one layout
// computation so the preview matches the download pixel for pixel.
//
// # Architecture
//
//	template image + <id>.json
//	         ↓
//	    [template] package (resolve ids, load and cache slot metadata)
//	         ↓
//	    [layout] package (wrap, fit, place)
//	         ↓                              ↓
//	    [overlay] → [render] → [compose]   [preview] (canvas-style surface)
//	         ↓                              ↓
//	    [artifact] (stored PNG/JPEG)       PNG bytes
//
// # Packages
//
// ## Layout & Rendering
//
// [layout] - Deterministic text layout: character-count wrapping, font
// fitting to the slot height, line placement and alignment.
//
// [overlay] - SVG text overlay for one layout, with optional slot outlines.
//
// [render] - Rasterizers for overlays: rsvg-convert when installed, and a
// pure Go vector backend otherwise.
//
// [photo] - Decoding, cover-fit cropping and circular masking of uploaded
// photos.
//
// [compose] - The compositor: template, photo and rasterized text merged
// into one image and stored as an artifact.
//
// [preview] - The live preview renderer, drawing through a small
// canvas-like Surface interface.
//
// [fonts] - The embedded bold face both renderers measure and draw with.
//
// ## Storage
//
// [template] - Template directory access and slot metadata.
//
// [artifact] - Generated card storage, unique naming and retention sweeps.
//
// [cache] - Cache backends (none, file, Redis) for metadata and previews.
//
// [record] - Optional MongoDB record of generated greetings.
//
// ## Orchestration
//
// [pipeline] - Request validation and the Runner shared by CLI and API.
//
// [share] - Share links and QR codes for generated cards.
//
// [config] - TOML and environment configuration.
//
// [httputil] - JSON/multipart request decoding and error responses.
//
// [observability] - Hooks for generation, cache and storage events.
//
// [errors] - Coded errors and input validation.
//
// # Quick Start
//
//	store := template.NewStore("templates")
//	desc, _ := store.Descriptor(ctx, "teachersday")
//	res, _ := layout.Compute("Mrs. Eleanor Vance", desc.Meta.TextSlot.Slot())
//	fmt.Println(res.Lines, res.FontSize, res.LineY)
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example ./pkg/layout    # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/layout
// [overlay]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/overlay
// [render]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/render
// [photo]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/photo
// [compose]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/compose
// [preview]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/preview
// [fonts]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/fonts
// [template]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/template
// [artifact]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/artifact
// [cache]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/cache
// [record]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/record
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/pipeline
// [share]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/share
// [config]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/greetcard/pkg/errors
package pkg
