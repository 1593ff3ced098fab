package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every HTML element and escapes what remains. Order
// messages and listing text are stored sanitized, never raw.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes markup from user-provided free text and trims
// surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
