package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/greetcard/pkg/errors"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTemplateNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeMetadataParse, errors.ErrCodeInvalidSlot, errors.ErrCodePhotoProcessing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write json response", "err", err)
	}
}

// WriteError writes err as an ErrorBody. Server-side failures are logged
// with their cause and answered with a generic message.
func WriteError(w http.ResponseWriter, logger *log.Logger, err error) {
	if logger == nil {
		logger = log.Default()
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := StatusFor(code)

	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
		msg = "Processing error"
	} else {
		logger.Debug("request rejected", "code", code, "err", err)
	}
	WriteJSON(w, status, ErrorBody{OK: false, Error: msg, Code: code})
}

// WritePNG writes PNG bytes.
func WritePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
