// Package share builds links and QR codes for passing a generated card on.
package share

import (
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/greetcard/pkg/errors"
)

// Platform is a share target.
type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformEmail    Platform = "email"
)

// Message texts.
const (
	MessagePrefix = "Happy Teacher's Day! Here's a personalized greeting: "
	EmailSubject  = "Happy Teacher's Day Greeting"
)

// QR code sizes in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// Message returns the greeting text that carries cardURL.
func Message(cardURL string) string {
	return MessagePrefix + cardURL
}

// Link returns a share link for cardURL on platform. cardURL must be
// absolute so the recipient can open it.
func Link(platform Platform, cardURL string) (string, error) {
	if err := validateURL(cardURL); err != nil {
		return "", err
	}
	text := escape(Message(cardURL))
	switch platform {
	case PlatformWhatsApp:
		return "https://wa.me/?text=" + text, nil
	case PlatformEmail:
		return "mailto:?subject=" + escape(EmailSubject) + "&body=" + text, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported share platform %q (want whatsapp or email)", platform)
	}
}

// QR encodes cardURL as a square PNG of size pixels. Zero size means
// DefaultQRSize.
func QR(cardURL string, size int) ([]byte, error) {
	if err := validateURL(cardURL); err != nil {
		return nil, err
	}
	if size == 0 {
		size = DefaultQRSize
	}
	if size < MinQRSize || size > MaxQRSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "qr size must be between %d and %d", MinQRSize, MaxQRSize)
	}
	png, err := qrcode.Encode(cardURL, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode qr code")
	}
	return png, nil
}

// Absolute resolves a card path such as /api/generated/x.png against base.
func Absolute(base, cardPath string) (string, error) {
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" || b.Host == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid base url %q", base)
	}
	ref, err := url.Parse(cardPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid card path")
	}
	return b.ResolveReference(ref).String(), nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidInput, "card url must be an absolute http(s) url, got %q", s)
	}
	return nil
}

// escape percent-encodes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
