// Package httputil provides the JSON and error plumbing shared by
// greetcard's HTTP handlers.
//
// # Responses
//
// Every JSON response carries an "ok" flag. Failures use [WriteError],
// which maps the error's code from
// [github.com/matzehuels/greetcard/pkg/errors] to an HTTP status:
//
//   - 400: INVALID_INPUT, INVALID_COLOR, UNSUPPORTED
//   - 404: TEMPLATE_NOT_FOUND, NOT_FOUND
//   - 413: request bodies over the upload limit
//   - 422: METADATA_PARSE, INVALID_SLOT, PHOTO_PROCESSING
//   - 500: everything else
//
// Internal error details are logged, never sent; clients get the
// user-facing message and the code.
//
// # Requests
//
// [DecodeJSON] and [ReadForm] read request bodies under a size limit, so a
// handler never buffers more than it is willing to accept.
package httputil
