package candidates

import (
	"net/url"
	"strings"

	"fonthunter/internal/validation"
)

// Strategy names, in hunt priority order.
const (
	StrategyDirect   = "direct"
	StrategyCDN      = "cdn"
	StrategyArchive  = "archive"
	StrategyCodeHost = "codehost"
	StrategySearch   = "search"
)

// Weights are the style tokens substituted into {weight}.
var Weights = []string{"Regular", "Bold", "Medium", "Light", "Black", "Thin", "ExtraBold", "SemiBold"}

// DefaultDirectTemplates are raw-host and CDN layouts guessed for a font.
var DefaultDirectTemplates = []string{
	"https://cdn.jsdelivr.net/gh/{name}/{name}-{weight}{ext}",
	"https://unpkg.com/{name}@latest/{name}-{weight}{ext}",
	"https://fonts.gstatic.com/s/{lower}/{name}-{weight}{ext}",
	"https://raw.githubusercontent.com/{name}/{name}/main/fonts/{name}-{weight}{ext}",
}

// DefaultCDNTemplates are package-CDN layouts keyed on the lower-cased name.
var DefaultCDNTemplates = []string{
	"https://cdn.jsdelivr.net/npm/@fontsource/{lower}/files/{lower}-{weight_lower}{ext}",
	"https://cdn.jsdelivr.net/npm/@fontsource/{slug}/files/{slug}-latin-400-normal{ext}",
	"https://unpkg.com/{lower}/{weight}{ext}",
	"https://cdnjs.cloudflare.com/ajax/libs/{lower}/{weight}{ext}",
}

const (
	DefaultArchiveURL   = "https://archive.org"
	DefaultGitHubAPIURL = "https://api.github.com"
)

// Candidate is a guessed URL and the strategy that produced it.
type Candidate struct {
	URL      string `json:"url"`
	Strategy string `json:"strategy"`
}

// Generator holds the templates and endpoints the generators expand.
// The zero value is not usable; start from NewGenerator.
type Generator struct {
	DirectTemplates []string
	CDNTemplates    []string
	ArchiveURL      string
	GitHubAPIURL    string
}

// NewGenerator returns a Generator with the default templates plus any
// extra direct and CDN templates.
func NewGenerator(extraDirect, extraCDN []string) *Generator {
	return &Generator{
		DirectTemplates: append(append([]string{}, DefaultDirectTemplates...), extraDirect...),
		CDNTemplates:    append(append([]string{}, DefaultCDNTemplates...), extraCDN...),
		ArchiveURL:      DefaultArchiveURL,
		GitHubAPIURL:    DefaultGitHubAPIURL,
	}
}

var defaultGenerator = NewGenerator(nil, nil)

// Generate returns every candidate for name using the default templates.
func Generate(name string) []Candidate {
	return defaultGenerator.Generate(name)
}

// Generate concatenates all generators in priority order. Pattern
// candidates point at font files; search and code-host candidates point at
// result pages and API queries that yield font URLs once fetched.
func (g *Generator) Generate(name string) []Candidate {
	q := NewQuery(name)
	var all []Candidate
	all = append(all, g.Direct(q)...)
	all = append(all, g.CDN(q)...)
	all = append(all, g.Archive(q)...)
	all = append(all, g.CodeHostQueries(q)...)
	all = append(all, g.SearchPages(q)...)
	return Unique(all)
}

// Direct expands every direct template over all weights and extensions.
func (g *Generator) Direct(q Query) []Candidate {
	return g.expand(q, g.DirectTemplates, StrategyDirect)
}

// CDN expands the package-CDN templates.
func (g *Generator) CDN(q Query) []Candidate {
	return g.expand(q, g.CDNTemplates, StrategyCDN)
}

func (g *Generator) expand(q Query, templates []string, strategy string) []Candidate {
	if q.Blank() || q.Clean == "" {
		return nil
	}
	var out []Candidate
	for _, tmpl := range templates {
		// Templates without {weight} expand once per extension.
		weights := Weights
		if !strings.Contains(tmpl, "{weight") {
			weights = []string{""}
		}
		for _, weight := range weights {
			for _, ext := range validation.FontExtensions {
				out = append(out, Candidate{URL: Expand(tmpl, q, weight, ext), Strategy: strategy})
			}
		}
	}
	return Unique(out)
}

// Archive guesses Internet Archive item identifiers and the font files
// stored under them.
func (g *Generator) Archive(q Query) []Candidate {
	if q.Blank() || q.Clean == "" {
		return nil
	}
	base := strings.TrimRight(g.ArchiveURL, "/")
	var out []Candidate
	for _, id := range ArchiveIdentifiers(q) {
		for _, ext := range validation.FontExtensions {
			out = append(out,
				Candidate{URL: base + "/download/" + url.PathEscape(id) + "/" + url.PathEscape(q.Clean+ext), Strategy: StrategyArchive},
				Candidate{URL: base + "/download/" + url.PathEscape(id) + "/" + url.PathEscape(q.Clean+"-Regular"+ext), Strategy: StrategyArchive},
			)
		}
	}
	return Unique(out)
}

// ArchiveIdentifiers returns the item identifiers guessed for q.
func ArchiveIdentifiers(q Query) []string {
	if q.Blank() || q.Clean == "" {
		return nil
	}
	return dedupe([]string{q.Clean, q.Lower, q.Slug})
}

// CodeHostQueries returns GitHub code-search API URLs, one per keyword and
// font extension.
func (g *Generator) CodeHostQueries(q Query) []Candidate {
	if q.Blank() {
		return nil
	}
	base := strings.TrimRight(g.GitHubAPIURL, "/")
	var out []Candidate
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		for _, ext := range validation.FontExtensions {
			v := url.Values{}
			v.Set("q", kw+" extension:"+strings.TrimPrefix(ext, "."))
			v.Set("per_page", "30")
			out = append(out, Candidate{URL: base + "/search/code?" + v.Encode(), Strategy: StrategyCodeHost})
		}
	}
	return Unique(out)
}

// SearchQueries returns the dork queries scraped from search engines.
func SearchQueries(q Query) []string {
	if q.Blank() {
		return nil
	}
	var out []string
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out,
			`"`+kw+`.ttf" OR "`+kw+`.otf"`,
			`site:github.com "`+kw+`"`,
			`intitle:"index of" fonts "`+kw+`"`,
		)
	}
	return dedupe(out)
}

// SearchEngines maps an engine name to its result-page URL prefix. The
// encoded query is appended to the prefix.
var SearchEngines = []struct {
	Name   string
	Prefix string
}{
	{"duckduckgo", "https://html.duckduckgo.com/html/?q="},
	{"google", "https://www.google.com/search?q="},
}

// CodeHostSearchPages maps a code host to its web search URL prefix.
var CodeHostSearchPages = []struct {
	Name   string
	Prefix string
}{
	{"github", "https://github.com/search?type=code&q="},
	{"gitlab", "https://gitlab.com/search?search="},
}

// SearchPages returns result-page URLs for every dork query on every
// general engine, followed by code-host web searches for each keyword.
func (g *Generator) SearchPages(q Query) []Candidate {
	if q.Blank() {
		return nil
	}
	var out []Candidate
	for _, query := range SearchQueries(q) {
		for _, engine := range SearchEngines {
			out = append(out, Candidate{URL: engine.Prefix + url.QueryEscape(query), Strategy: StrategySearch})
		}
	}
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		for _, host := range CodeHostSearchPages {
			out = append(out, Candidate{URL: host.Prefix + url.QueryEscape(kw+" font"), Strategy: StrategySearch})
		}
	}
	return Unique(out)
}

// Expand substitutes the template placeholders for one weight and extension.
func Expand(tmpl string, q Query, weight, ext string) string {
	return strings.NewReplacer(
		"{name}", q.Clean,
		"{lower}", q.Lower,
		"{slug}", url.PathEscape(q.Slug),
		"{weight_lower}", strings.ToLower(weight),
		"{weight}", weight,
		"{ext}", ext,
	).Replace(tmpl)
}

// Unique drops repeated URLs, keeping the first occurrence.
func Unique(in []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CountByStrategy tallies candidates per strategy name.
func CountByStrategy(cs []Candidate) map[string]int {
	counts := make(map[string]int)
	for _, c := range cs {
		counts[c.Strategy]++
	}
	return counts
}
