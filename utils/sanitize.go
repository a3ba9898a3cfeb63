package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	richPolicy   = bluemonday.UGCPolicy()
)

// SanitizeText strips all markup from short single-value fields such as titles.
// Entities escaped by the policy are decoded back so "a & b" survives intact.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// SanitizeRich keeps safe formatting in long-form content such as note bodies.
func SanitizeRich(input string) string {
	return richPolicy.Sanitize(input)
}
