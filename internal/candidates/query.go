// Package candidates turns a font name into ordered lists of guessed URLs.
//
// Every generator in this package is pure: the same name always yields the
// same candidates in the same order.
package candidates

import (
	"regexp"
	"strings"

	"fonthunter/internal/validation"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Query is a font name together with the normalized forms used by the
// generators.
type Query struct {
	// Name is the verbatim user input.
	Name string
	// Clean keeps ASCII letters and digits only: "Space Mono" -> "SpaceMono".
	Clean string
	// Lower is Clean lower-cased.
	Lower string
	// Slug is the directory-safe form: "Space Mono" -> "space-mono".
	Slug     string
	Keywords []string
}

// NewQuery derives every normalized form of name.
func NewQuery(name string) Query {
	clean := nonAlphanumeric.ReplaceAllString(name, "")
	return Query{
		Name:     name,
		Clean:    clean,
		Lower:    strings.ToLower(clean),
		Slug:     validation.Slugify(name),
		Keywords: Keywords(name),
	}
}

// Blank reports whether the query has nothing to search for.
func (q Query) Blank() bool {
	return strings.TrimSpace(q.Name) == ""
}

// Keywords returns the deduplicated search variants of name in priority
// order: the verbatim name, the words concatenated, and the words hyphenated.
// The verbatim name is always first.
func Keywords(name string) []string {
	trimmed := strings.TrimSpace(name)
	words := strings.Fields(trimmed)

	variants := []string{
		name,
		strings.Join(words, ""),
		strings.Join(words, "-"),
	}
	if trimmed != name {
		variants = append(variants, trimmed)
	}
	return dedupe(variants)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for i, s := range in {
		// The first element is the verbatim input and is kept even when empty.
		if s == "" && i > 0 {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
