package download

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fonthunter/internal/fontcheck"
	"fonthunter/internal/validation"
)

// Store writes validated font assets under a root directory, one
// subdirectory per font slug.
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Dir returns the directory a font's assets are written to.
func (s *Store) Dir(fontName string) string {
	return filepath.Join(s.root, validation.Slugify(fontName))
}

// Persist writes the asset to <root>/<slug>/<file> and returns the path.
// Assets the validator rejected are never written.
func (s *Store) Persist(asset *Asset, fontName string) (string, error) {
	if asset == nil || !asset.Verdict.Accepted {
		return "", &FetchError{URL: assetURL(asset), Stage: StagePersist, Err: ErrInvalidFont}
	}
	slug := validation.Slugify(fontName)
	if slug == "" {
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: ErrEmptyFontName}
	}

	dir := s.Dir(fontName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}

	dest := filepath.Join(dir, FileName(asset, slug))
	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(asset.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", &FetchError{URL: asset.URL, Stage: StagePersist, Err: err}
	}
	return dest, nil
}

// FileName picks the on-disk name for an asset. The URL basename is kept
// when it carries a font extension; otherwise the slug is combined with an
// extension guessed from the URL, then from the detected format.
func FileName(asset *Asset, slug string) string {
	if base := urlBase(asset.URL); base != "" && validation.FontExtension(asset.URL) != "" {
		if clean := sanitizeFileName(base); clean != "" {
			return clean
		}
	}
	return slug + guessExtension(asset)
}

func guessExtension(asset *Asset) string {
	lower := strings.ToLower(asset.URL)
	switch {
	case strings.Contains(lower, ".otf"):
		return ".otf"
	case strings.Contains(lower, ".woff2"):
		return ".woff2"
	case strings.Contains(lower, ".woff"):
		return ".woff"
	}
	if asset.Verdict.Confidence == fontcheck.ConfidenceMagic {
		if ext := asset.Verdict.Format.Extension(); ext != "" {
			return ext
		}
	}
	return ".ttf"
}

func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return base
}

func sanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	return strings.TrimLeft(strings.TrimSpace(name), ".")
}

func assetURL(a *Asset) string {
	if a == nil {
		return ""
	}
	return a.URL
}
