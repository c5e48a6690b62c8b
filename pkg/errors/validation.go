package errors

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/image/colornames"
)

// maxTemplateIDLength bounds template identifiers accepted from requests.
const maxTemplateIDLength = 128

// ValidateTemplateID validates a template identifier for safety.
// Template ids are resolved to files inside the templates directory, so the
// rules reject anything that could escape it:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files
//   - Maximum length of 128 characters
func ValidateTemplateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "template id cannot be empty")
	}

	if len(id) > maxTemplateIDLength {
		return New(ErrCodeInvalidInput, "template id too long (max %d characters)", maxTemplateIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "template id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "template id cannot contain path separators")
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "template id cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidInput, "template id cannot be a hidden file")
	}

	return nil
}

// hexColorRegex matches CSS hex colors in #rgb or #rrggbb form.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a fill color: #rgb, #rrggbb or a CSS color name.
func ValidateColor(c string) error {
	_, err := NormalizeColor(c)
	return err
}

// NormalizeColor returns c as a hex color. CSS color names resolve to
// #rrggbb; anything else must already be hex, since the value is embedded in
// the overlay stylesheet and parsed by the pure-Go rasterizer.
func NormalizeColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if hexColorRegex.MatchString(c) {
		return c, nil
	}
	if rgba, ok := colornames.Map[strings.ToLower(c)]; ok {
		return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B), nil
	}
	return "", New(ErrCodeInvalidColor, "invalid color %q (want #rgb, #rrggbb or a CSS color name)", c)
}

// ValidateText validates free-form card text. Empty text is valid and lays
// out as zero lines. Control characters other than ordinary whitespace are
// rejected; the text is still escaped before it reaches any markup.
func ValidateText(text string) error {
	for _, r := range text {
		if r == '\x00' || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			return New(ErrCodeInvalidInput, "text contains invalid control characters")
		}
	}
	return nil
}
