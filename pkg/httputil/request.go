package httputil

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"github.com/matzehuels/greetcard/pkg/errors"
)

// DefaultJSONLimit bounds JSON request bodies.
const DefaultJSONLimit = 1 << 20

// IsMultipart reports whether r carries a multipart form.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// DecodeJSON decodes the body of r into dst, reading at most limit bytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	if limit <= 0 {
		limit = DefaultJSONLimit
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(dst); err != nil {
		if tooLarge(err) {
			return errors.New(errors.ErrCodeTooLarge, "request body exceeds %d bytes", limit)
		}
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

// ParseMultipart parses a multipart body of at most limit bytes. Parts are
// held in memory up to limit.
func ParseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		if tooLarge(err) {
			return errors.New(errors.ErrCodeTooLarge, "upload exceeds %d bytes", limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart form")
	}
	return nil
}

// FormFile returns the contents of the uploaded file field, or nil when
// the field is absent. Files over limit fail with PAYLOAD_TOO_LARGE.
func FormFile(r *http.Request, field string, limit int64) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s upload", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s upload", field)
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeTooLarge, "%s exceeds %d bytes", field, limit)
	}
	return data, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return stderrors.As(err, &mbe)
}
