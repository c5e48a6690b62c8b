// Package template loads card templates and their slot metadata.
//
// A template is an image file in a flat directory, named by its id with one
// of the extensions in [ImageExtensions]. Next to it an optional
// <id>.json file declares where text and photo go:
//
//	{
//	  "textSlot":  {"x": 800, "y": 200, "maxWidth": 1200, "fontSize": 72, "color": "#0b3d91"},
//	  "photoSlot": {"x": 200, "y": 250, "width": 400, "height": 400, "shape": "circle"}
//	}
//
// Templates without a metadata file use [DefaultMeta]. [Store] resolves ids,
// caches parsed metadata through [github.com/matzehuels/greetcard/pkg/cache]
// and rewrites existing metadata files atomically.
package template
