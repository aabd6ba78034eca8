// Package fallback builds the manual-search dossier written when a hunt
// finds nothing.
package fallback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fonthunter/internal/candidates"
	"fonthunter/internal/validation"
)

// FileName is the dossier written next to where the font would have gone.
const FileName = "HUNTING_INSTRUCTIONS.txt"

// MaxQueries bounds the number of suggested queries.
const MaxQueries = 10

var banner = strings.Repeat("=", 80)

// Report is the human-readable fallback for a failed hunt.
type Report struct {
	FontName string   `json:"font_name"`
	Queries  []string `json:"queries"`
	Text     string   `json:"text"`
}

// Queries returns up to MaxQueries deduplicated manual search queries
// built from the font's keyword set.
func Queries(fontName string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, kw := range candidates.Keywords(fontName) {
		for _, q := range []string{
			`site:github.com "` + kw + `" (filetype:otf OR filetype:woff2 OR filetype:ttf)`,
			`site:vk.com "` + kw + `" (filetype:otf OR filetype:woff2 OR filetype:ttf)`,
			`intitle:"index of" "fonts" "` + kw + `"`,
			`"` + kw + `" filetype:otf download`,
			`"` + kw + `" filetype:woff2 download`,
			`"` + kw + `" webfont download`,
			`"` + kw + `" site:archive.org`,
		} {
			if _, ok := seen[q]; ok {
				continue
			}
			seen[q] = struct{}{}
			out = append(out, q)
			if len(out) == MaxQueries {
				return out
			}
		}
	}
	return out
}

// New builds the report for fontName.
func New(fontName string) Report {
	queries := Queries(fontName)

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString("FONT DOWNLOAD FAILED - LAST RESORT OPTIONS\n")
	b.WriteString(banner + "\n\n")
	fmt.Fprintf(&b, "Could not automatically find font files for: %q\n\n", fontName)
	b.WriteString("Try these search queries manually:\n\n")
	for _, q := range queries {
		b.WriteString("  - " + q + "\n")
	}
	b.WriteString("\nOnce found, place the font files in the output directory under a\n")
	b.WriteString("folder named after the font, for example: " + validation.Slugify(fontName) + "/\n")
	b.WriteString(banner + "\n")

	return Report{FontName: fontName, Queries: queries, Text: b.String()}
}

// Write stores the report at <outputDir>/<slug>/HUNTING_INSTRUCTIONS.txt
// and returns the path.
func Write(outputDir string, r Report) (string, error) {
	slug := validation.Slugify(r.FontName)
	if slug == "" {
		return "", fmt.Errorf("write report: empty font name")
	}
	dir := filepath.Join(outputDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(r.Text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
