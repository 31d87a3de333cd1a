// Package normalize cleans raw extracted text before chunking.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minLineLength is the trimmed length below which a line is treated as
// header/footer noise and dropped.
const minLineLength = 30

var noiseChars = regexp.MustCompile(`[^\w\s.,!?-]`)

// Text sanitizes raw document text: drops lines whose trimmed length is at
// most 30 characters (header/footer heuristic), strips characters outside
// {word chars, whitespace, . , ! ? -}, and collapses whitespace runs to
// single spaces. The collapsed result is subject to the same length rule, so
// a document that boils down to noise normalizes to the empty string.
//
// Pure and idempotent: Text(Text(s)) == Text(s).
func Text(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if utf8.RuneCountInString(strings.TrimSpace(line)) > minLineLength {
			kept = append(kept, line)
		}
	}

	cleaned := noiseChars.ReplaceAllString(strings.Join(kept, "\n"), " ")
	out := strings.Join(strings.Fields(cleaned), " ")
	if utf8.RuneCountInString(out) <= minLineLength {
		return ""
	}
	return out
}
