package utils

import "github.com/microcosm-cc/bluemonday"

// TextFilter rewrites user supplied text before it is stored.
type TextFilter func(string) string

// KeepText stores text exactly as submitted.
func KeepText(input string) string {
	return input
}

// SanitizeHTML returns a filter that strips markup outside bluemonday's
// user-generated-content policy to prevent XSS when posts are rendered as HTML.
func SanitizeHTML() TextFilter {
	return bluemonday.UGCPolicy().Sanitize
}
