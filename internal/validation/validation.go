package validation

import (
	"net"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// FontExtensions lists the recognized font file extensions in preference order.
var FontExtensions = []string{".woff2", ".woff", ".ttf", ".otf", ".eot"}

// MaxFontNameLength bounds user-supplied font names.
const MaxFontNameLength = 100

var whitespacePattern = regexp.MustCompile(`\s+`)

// ValidateFontName checks a user-supplied font name before a hunt.
func ValidateFontName(name string) (bool, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false, "font name is required"
	}
	if len(trimmed) > MaxFontNameLength {
		return false, "font name is too long"
	}
	if strings.ContainsAny(trimmed, "/\\") || strings.Contains(trimmed, "..") {
		return false, "font name contains path characters"
	}
	return true, ""
}

// Slugify lowercases a font name and replaces whitespace runs with hyphens.
// "Space Mono" becomes "space-mono".
func Slugify(name string) string {
	slug := whitespacePattern.ReplaceAllString(strings.TrimSpace(name), "-")
	slug = strings.ToLower(slug)
	// Keep slugs usable as a single path segment.
	slug = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, slug)
	return strings.Trim(slug, ".")
}

// FontExtension returns the recognized font extension of a URL's path,
// or "" when the path does not end in one.
func FontExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, e := range FontExtensions {
		if ext == e {
			return e
		}
	}
	return ""
}

// IsFontURL reports whether the URL path ends in a recognized font extension.
func IsFontURL(rawURL string) bool {
	return FontExtension(rawURL) != ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	// 0.0.0.0 or ::
	if ip.IsUnspecified() {
		return true
	}

	// Cloud metadata endpoints (AWS/GCP and Azure)
	if ip.Equal(net.ParseIP("169.254.169.254")) || ip.Equal(net.ParseIP("168.63.129.16")) {
		return true
	}

	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// If we can't resolve, be conservative and block
		return true, err
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateURLForProbe validates a candidate URL is safe to send a request to.
// Private hosts are blocked unless allowPrivate is set.
func ValidateURLForProbe(urlStr string, allowPrivate bool) (bool, string) {
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}
	if allowPrivate {
		return true, ""
	}

	u, _ := url.Parse(urlStr)

	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}
