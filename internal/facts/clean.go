// File path: internal/facts/clean.go
package facts

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]{2,}`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes raw letter text before extraction: carriage returns,
// control characters, and whitespace runs are collapsed so the pattern
// matchers see a stable surface.
func Clean(letter string) string {
	letter = strings.ReplaceAll(letter, "\r\n", "\n")
	letter = strings.ReplaceAll(letter, "\r", "\n")
	var b strings.Builder
	b.Grow(len(letter))
	for _, r := range letter {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), "\t", " ")
	cleaned = spaceRun.ReplaceAllString(cleaned, " ")
	cleaned = newlineRun.ReplaceAllString(cleaned, "\n\n")
	lines := strings.Split(cleaned, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
