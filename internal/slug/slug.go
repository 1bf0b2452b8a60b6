// Package slug derives URL-safe identifiers from list titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	nonWord  = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// Generate lowercases title, turns whitespace runs into a single hyphen and
// drops everything that is not a word character or hyphen.
// The result is not guaranteed to be unique.
func Generate(title string) string {
	s := strings.ToLower(title)
	s = spaceRun.ReplaceAllString(s, "-")
	return nonWord.ReplaceAllString(s, "")
}
