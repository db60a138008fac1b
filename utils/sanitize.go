package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from free-text input before it is stored,
// so nothing executable can make it into rendered output.
func SanitizeText(s string) string {
	return strings.TrimSpace(sanitizePolicy.Sanitize(s))
}
