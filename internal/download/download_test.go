package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"fonthunter/internal/fontcheck"
)

var ttfMagic = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x0a, 0x00, 0x80}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.ttf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "font/ttf")
		w.Write(ttfMagic)
	})
	mux.HandleFunc("/missing.ttf", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/big.ttf", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0x00}, 64))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(srv.Client(), WithAllowPrivateHosts(true), WithMaxBytes(32))

	t.Run("ok", func(t *testing.T) {
		body, ct, err := f.Fetch(context.Background(), srv.URL+"/ok.ttf")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !bytes.Equal(body, ttfMagic) {
			t.Errorf("Fetch() body = %x", body)
		}
		if ct != "font/ttf" {
			t.Errorf("Fetch() content type = %q", ct)
		}
	})

	t.Run("status", func(t *testing.T) {
		_, _, err := f.Fetch(context.Background(), srv.URL+"/missing.ttf")
		if StageOf(err) != StageStatus {
			t.Errorf("Fetch() error = %v, want status stage", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := f.Fetch(context.Background(), srv.URL+"/big.ttf")
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
		}
	})

	t.Run("private host blocked", func(t *testing.T) {
		guarded := NewFetcher(srv.Client())
		_, _, err := guarded.Fetch(context.Background(), srv.URL+"/ok.ttf")
		if !errors.Is(err, ErrUnsafeURL) {
			t.Errorf("Fetch() error = %v, want ErrUnsafeURL", err)
		}
	})
}

func TestFetchFont_RejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Not here</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), WithAllowPrivateHosts(true))
	asset, err := f.FetchFont(context.Background(), srv.URL+"/Inter.woff2")
	if asset != nil {
		t.Error("FetchFont() returned an asset for HTML body")
	}
	if StageOf(err) != StageValidate || !errors.Is(err, ErrInvalidFont) {
		t.Errorf("FetchFont() error = %v, want validate stage", err)
	}
}

func TestFetchFont_Accepts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wOF2\x00\x01\x00\x00"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), WithAllowPrivateHosts(true))
	asset, err := f.FetchFont(context.Background(), srv.URL+"/Inter.woff2")
	if err != nil {
		t.Fatalf("FetchFont() error = %v", err)
	}
	if asset.Verdict.Format != fontcheck.FormatWOFF2 {
		t.Errorf("FetchFont() format = %q", asset.Verdict.Format)
	}
}

func TestFileName(t *testing.T) {
	magic := fontcheck.Verdict{Accepted: true, Format: fontcheck.FormatOpenType, Confidence: fontcheck.ConfidenceMagic}
	heuristic := fontcheck.Verdict{Accepted: true, Confidence: fontcheck.ConfidenceHeuristic}

	tests := []struct {
		name    string
		url     string
		verdict fontcheck.Verdict
		want    string
	}{
		{"basename kept", "https://cdn.example.com/fonts/Inter-Regular.woff2", heuristic, "Inter-Regular.woff2"},
		{"escaped basename", "https://cdn.example.com/Space%20Mono.ttf", heuristic, "Space Mono.ttf"},
		{"query ignored", "https://cdn.example.com/Inter.otf?v=3", heuristic, "Inter.otf"},
		{"no extension falls back to slug", "https://example.com/download?id=7", heuristic, "space-mono.ttf"},
		{"otf substring", "https://example.com/get?file=a.otf.zip", heuristic, "space-mono.otf"},
		{"woff2 substring", "https://example.com/get?f=x.woff2.gz", heuristic, "space-mono.woff2"},
		{"magic format", "https://example.com/download", magic, "space-mono.otf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileName(&Asset{URL: tt.url, Verdict: tt.verdict}, "space-mono")
			if got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersist(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	asset := &Asset{
		URL:     "https://cdn.example.com/SpaceMono-Regular.ttf",
		Data:    ttfMagic,
		Verdict: fontcheck.Inspect(ttfMagic),
	}
	path, err := s.Persist(asset, "Space Mono")
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	want := filepath.Join(root, "space-mono", "SpaceMono-Regular.ttf")
	if path != want {
		t.Errorf("Persist() path = %q, want %q", path, want)
	}
	if dir := s.Dir("  Space  Mono "); filepath.Dir(path) != dir {
		t.Errorf("Persist() wrote into %q, Dir() = %q", filepath.Dir(path), dir)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, ttfMagic) {
		t.Error("persisted bytes differ from asset")
	}

	entries, _ := os.ReadDir(filepath.Join(root, "space-mono"))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestPersist_RefusesRejected(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	html := []byte("<html><body>nope</body></html>")
	_, err := s.Persist(&Asset{URL: "https://x.test/a.ttf", Data: html, Verdict: fontcheck.Inspect(html)}, "Inter")
	if StageOf(err) != StagePersist || !errors.Is(err, ErrInvalidFont) {
		t.Errorf("Persist() error = %v, want persist stage invalid font", err)
	}
	if _, err := os.Stat(filepath.Join(root, "inter")); !os.IsNotExist(err) {
		t.Error("Persist() created a directory for a rejected asset")
	}
}

func TestPersist_EmptyName(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Persist(&Asset{URL: "https://x.test/a.ttf", Data: ttfMagic, Verdict: fontcheck.Inspect(ttfMagic)}, "  ")
	if !errors.Is(err, ErrEmptyFontName) {
		t.Errorf("Persist() error = %v, want ErrEmptyFontName", err)
	}
}

func TestPersist_UnwritableDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	root := t.TempDir()
	if err := os.Chmod(root, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(root, 0o755) })

	s := NewStore(root)
	_, err := s.Persist(&Asset{URL: "https://x.test/a.ttf", Data: ttfMagic, Verdict: fontcheck.Inspect(ttfMagic)}, "Inter")
	if StageOf(err) != StagePersist {
		t.Errorf("Persist() error = %v, want persist stage", err)
	}
}
