// Package sanitize strips markup from free text written by users.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The policy is safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// maxPasses bounds the strip/unescape loop. Escaped markup such as
// "&lt;b&gt;" becomes a tag after one unescape and is removed on the next pass.
const maxPasses = 4

// Text removes every HTML element and trims the result. The remaining text
// is stored literally: "Silva & Filhos" stays as typed, not entity-encoded.
// Escaping is left to whoever renders it.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// List applies Text to each element and drops the ones left empty.
func List(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := Text(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
