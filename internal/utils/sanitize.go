package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips unsafe markup from user-generated rich text such as
// task descriptions and comments.
func SanitizeText(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// SanitizePlain removes every tag, for single-line fields like titles and names.
func SanitizePlain(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
