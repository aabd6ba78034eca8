// Package search turns result pages and code-host APIs into font URLs.
//
// Nothing here downloads fonts. Every lookup is a page or API fetch whose
// response is mined for links ending in a font extension.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"fonthunter/internal/validation"
)

// DefaultMaxPageBytes caps a single result page or API response.
const DefaultMaxPageBytes = 4 << 20

// Client fetches search pages and API responses.
type Client struct {
	http     *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxPageBytes caps response bodies.
func WithMaxPageBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a search Client.
func New(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		http:     httpClient,
		maxBytes: DefaultMaxPageBytes,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	return resp, nil
}

// ScrapeLinks fetches an HTML result page and returns the font URLs it
// links to, in page order. Redirect wrappers used by search engines are
// unwrapped and code-host blob links are rewritten to raw content.
func (c *Client) ScrapeLinks(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := c.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isRateLimitStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %s returned %s", ErrRateLimited, pageURL, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search page %s: HTTP %s", pageURL, resp.Status)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, c.maxBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base := resp.Request.URL
	return ExtractFontLinks(doc, base), nil
}

// ExtractFontLinks collects deduplicated font links from a parsed page.
func ExtractFontLinks(doc *goquery.Document, base *url.URL) []string {
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if parsed, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = parsed
		}
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		target, err := base.Parse(href)
		if err != nil {
			return
		}
		target.Fragment = ""

		link := RawURL(Unwrap(target).String())
		if !validation.IsFontURL(link) {
			return
		}
		if ok, _ := validation.ValidateURL(link); !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

// Unwrap returns the destination of a search-engine redirect link
// (Google /url?q=, DuckDuckGo /l/?uddg=), or u unchanged.
func Unwrap(u *url.URL) *url.URL {
	q := u.Query()
	var dest string
	switch {
	case u.Path == "/url":
		dest = q.Get("q")
		if dest == "" {
			dest = q.Get("url")
		}
	case q.Get("uddg") != "":
		dest = q.Get("uddg")
	}
	if dest == "" {
		return u
	}
	parsed, err := url.Parse(dest)
	if err != nil || !parsed.IsAbs() {
		return u
	}
	return parsed
}

// RawURL rewrites GitHub and GitLab blob links to their raw-content form.
// Other URLs are returned unchanged.
func RawURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	switch strings.ToLower(u.Host) {
	case "github.com", "www.github.com":
		// /{owner}/{repo}/blob/{ref}/{path...}
		parts := strings.SplitN(strings.TrimPrefix(u.EscapedPath(), "/"), "/", 5)
		if len(parts) == 5 && parts[2] == "blob" {
			return "https://raw.githubusercontent.com/" + strings.Join([]string{parts[0], parts[1], parts[3], parts[4]}, "/")
		}
	case "gitlab.com":
		if i := strings.Index(u.Path, "/-/blob/"); i >= 0 {
			u.Path = u.Path[:i] + "/-/raw/" + u.Path[i+len("/-/blob/"):]
			u.RawPath = ""
			u.RawQuery = ""
			return u.String()
		}
	}
	return link
}

type codeSearchResponse struct {
	TotalCount int              `json:"total_count"`
	Items      []codeSearchItem `json:"items"`
}

type codeSearchItem struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// CodeSearch runs one GitHub code-search API query and returns raw-content
// URLs for the font files it matched.
func (c *Client) CodeSearch(ctx context.Context, apiURL string) ([]string, error) {
	resp, err := c.get(ctx, apiURL, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read code search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message          string `json:"message"`
			DocumentationURL string `json:"documentation_url"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.DocumentationURL = payload.DocumentationURL
		}
		return nil, apiErr
	}

	var result codeSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode code search response: %w", err)
	}

	var links []string
	for _, item := range result.Items {
		link := RawURL(item.HTMLURL)
		if !validation.IsFontURL(link) {
			continue
		}
		links = append(links, link)
	}
	c.logger.Debug("code search", "url", apiURL, "total", result.TotalCount, "fonts", len(links))
	return links, nil
}

type archiveMetadata struct {
	Files []struct {
		Name string `json:"name"`
	} `json:"files"`
}

// ArchiveFiles lists the font files stored in an Internet Archive item.
// A missing item yields no files and no error.
func (c *Client) ArchiveFiles(ctx context.Context, archiveURL, identifier string) ([]string, error) {
	base := strings.TrimRight(archiveURL, "/")
	resp, err := c.get(ctx, base+"/metadata/"+url.PathEscape(identifier), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if isRateLimitStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: archive metadata returned %s", ErrRateLimited, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("archive metadata %s: HTTP %s", identifier, resp.Status)
	}

	var meta archiveMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode archive metadata: %w", err)
	}

	var links []string
	for _, f := range meta.Files {
		if !slices.Contains(validation.FontExtensions, strings.ToLower(path.Ext(f.Name))) {
			continue
		}
		segments := strings.Split(f.Name, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		links = append(links, base+"/download/"+url.PathEscape(identifier)+"/"+path.Join(segments...))
	}
	return links, nil
}
