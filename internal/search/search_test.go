package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestRawURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://github.com/googlefonts/spacemono/blob/main/fonts/SpaceMono-Regular.ttf",
			"https://raw.githubusercontent.com/googlefonts/spacemono/main/fonts/SpaceMono-Regular.ttf",
		},
		{
			"https://gitlab.com/group/fonts/-/blob/master/Inter.woff2",
			"https://gitlab.com/group/fonts/-/raw/master/Inter.woff2",
		},
		{
			"https://github.com/googlefonts/spacemono",
			"https://github.com/googlefonts/spacemono",
		},
		{
			"https://cdn.example.com/Inter.woff2",
			"https://cdn.example.com/Inter.woff2",
		},
	}
	for _, tt := range tests {
		if got := RawURL(tt.in); got != tt.want {
			t.Errorf("RawURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.google.com/url?q=https://example.com/a.ttf&sa=U", "https://example.com/a.ttf"},
		{"https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fb.otf&rut=x", "https://example.com/b.otf"},
		{"https://www.google.com/url?q=/relative", "https://www.google.com/url?q=/relative"},
		{"https://example.com/c.woff", "https://example.com/c.woff"},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.in)
		if got := Unwrap(u).String(); got != tt.want {
			t.Errorf("Unwrap(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractFontLinks(t *testing.T) {
	page := `<html><body>
<a href="/url?q=https://fonts.example.com/SpaceMono-Regular.ttf&amp;sa=U">result</a>
<a href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fmirror.example.org%2Fspace%2FSpaceMono.woff2">ddg</a>
<a href="https://github.com/acme/fonts/blob/main/SpaceMono-Bold.otf">blob</a>
<a href="files/SpaceMono-Italic.woff">relative</a>
<a href="https://fonts.example.com/SpaceMono-Regular.ttf">duplicate</a>
<a href="https://example.com/about">not a font</a>
<a href="javascript:alert(1).ttf">script</a>
<a href="#top">anchor</a>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse("https://www.google.com/search?q=x")

	got := ExtractFontLinks(doc, base)
	want := []string{
		"https://fonts.example.com/SpaceMono-Regular.ttf",
		"https://mirror.example.org/space/SpaceMono.woff2",
		"https://raw.githubusercontent.com/acme/fonts/main/SpaceMono-Bold.otf",
		"https://www.google.com/files/SpaceMono-Italic.woff",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFontLinks() =\n%q\nwant\n%q", got, want)
	}
}

func TestScrapeLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		fmt.Fprint(w, `<a href="/fonts/Caf`+"\xe9"+`.ttf">x</a><a href="/fonts/Inter.otf">y</a>`)
	})
	mux.HandleFunc("/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.Client())

	links, err := c.ScrapeLinks(context.Background(), srv.URL+"/html/?q=inter")
	if err != nil {
		t.Fatalf("ScrapeLinks() error = %v", err)
	}
	want := []string{srv.URL + "/fonts/Caf%C3%A9.ttf", srv.URL + "/fonts/Inter.otf"}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("ScrapeLinks() = %q, want %q", links, want)
	}

	if _, err := c.ScrapeLinks(context.Background(), srv.URL+"/limited"); !IsRateLimited(err) {
		t.Errorf("ScrapeLinks(429) error = %v, want rate limited", err)
	}
	if _, err := c.ScrapeLinks(context.Background(), srv.URL+"/broken"); err == nil || IsRateLimited(err) {
		t.Errorf("ScrapeLinks(502) error = %v, want plain error", err)
	}
}

func TestCodeSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/code" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total_count":3,"items":[
			{"name":"Inter.ttf","path":"fonts/Inter.ttf","html_url":"https://github.com/rsms/inter/blob/master/fonts/Inter.ttf","repository":{"full_name":"rsms/inter"}},
			{"name":"README.md","path":"README.md","html_url":"https://github.com/rsms/inter/blob/master/README.md","repository":{"full_name":"rsms/inter"}},
			{"name":"Inter.woff2","path":"web/Inter.woff2","html_url":"https://github.com/x/y/blob/v1/web/Inter.woff2","repository":{"full_name":"x/y"}}
		]}`)
	}))
	defer srv.Close()

	c := New(srv.Client())
	links, err := c.CodeSearch(context.Background(), srv.URL+"/search/code?q=Inter+extension%3Attf")
	if err != nil {
		t.Fatalf("CodeSearch() error = %v", err)
	}
	want := []string{
		"https://raw.githubusercontent.com/rsms/inter/master/fonts/Inter.ttf",
		"https://raw.githubusercontent.com/x/y/v1/web/Inter.woff2",
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("CodeSearch() = %q, want %q", links, want)
	}
}

func TestCodeSearch_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		rateLimited  bool
		unauthorized bool
	}{
		{"primary rate limit", http.StatusForbidden, `{"message":"API rate limit exceeded"}`, true, false},
		{"secondary rate limit", http.StatusTooManyRequests, `{"message":"You have exceeded a secondary rate limit"}`, true, false},
		{"requires auth", http.StatusUnauthorized, `{"message":"Requires authentication"}`, false, true},
		{"validation", http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.Client()).CodeSearch(context.Background(), srv.URL+"/search/code?q=x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("CodeSearch() error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message == "" {
				t.Errorf("APIError = %+v", apiErr)
			}
			if IsRateLimited(err) != tt.rateLimited {
				t.Errorf("IsRateLimited() = %v, want %v", IsRateLimited(err), tt.rateLimited)
			}
			if IsUnauthorized(err) != tt.unauthorized {
				t.Errorf("IsUnauthorized() = %v, want %v", IsUnauthorized(err), tt.unauthorized)
			}
		})
	}
}

func TestArchiveFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metadata/SpaceMono":
			fmt.Fprint(w, `{"files":[{"name":"SpaceMono.zip"},{"name":"ttf/SpaceMono Regular.ttf"},{"name":"SpaceMono-Bold.OTF"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.Client())
	links, err := c.ArchiveFiles(context.Background(), srv.URL, "SpaceMono")
	if err != nil {
		t.Fatalf("ArchiveFiles() error = %v", err)
	}
	want := []string{
		srv.URL + "/download/SpaceMono/ttf/SpaceMono%20Regular.ttf",
		srv.URL + "/download/SpaceMono/SpaceMono-Bold.OTF",
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("ArchiveFiles() = %q, want %q", links, want)
	}

	links, err = c.ArchiveFiles(context.Background(), srv.URL, "missing")
	if err != nil || len(links) != 0 {
		t.Errorf("ArchiveFiles(missing) = %q, %v", links, err)
	}
}
