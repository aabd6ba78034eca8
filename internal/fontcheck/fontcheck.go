// Package fontcheck decides whether a fetched byte buffer is really a font.
//
// Servers routinely answer "200 OK" with an HTML landing or error page for a
// URL that looked like a font, so every download passes through Inspect
// before it may be written to disk.
package fontcheck

import (
	"bytes"

	"golang.org/x/image/font/sfnt"
)

// Format names a recognized font container.
type Format string

const (
	FormatUnknown    Format = ""
	FormatTrueType   Format = "truetype"
	FormatOpenType   Format = "opentype"
	FormatWOFF       Format = "woff"
	FormatWOFF2      Format = "woff2"
	FormatAppleTrue  Format = "apple-truetype"
	FormatType1      Format = "type1-sfnt"
	FormatCollection Format = "truetype-collection"
	FormatEOT        Format = "eot"
)

// Extension returns the canonical file extension for the format, or "".
func (f Format) Extension() string {
	switch f {
	case FormatTrueType, FormatAppleTrue, FormatType1:
		return ".ttf"
	case FormatOpenType:
		return ".otf"
	case FormatWOFF:
		return ".woff"
	case FormatWOFF2:
		return ".woff2"
	case FormatCollection:
		return ".ttc"
	case FormatEOT:
		return ".eot"
	}
	return ""
}

// Confidence says how a verdict was reached.
type Confidence string

const (
	// ConfidenceNone marks a rejected buffer.
	ConfidenceNone Confidence = "none"
	// ConfidenceMagic means the leading bytes matched a known signature.
	ConfidenceMagic Confidence = "magic"
	// ConfidenceHeuristic means no signature matched but the buffer was large
	// enough to be accepted anyway. This path admits false positives.
	ConfidenceHeuristic Confidence = "heuristic"
)

// Verdict is the result of inspecting a buffer.
type Verdict struct {
	Accepted   bool
	Format     Format
	Confidence Confidence
	Reason     string
}

const (
	minFontBytes      = 4
	heuristicMinBytes = 1000
	htmlSniffWindow   = 100
	eotMagicOffset    = 34
)

var signatures = []struct {
	magic  []byte
	format Format
}{
	{[]byte{0x00, 0x01, 0x00, 0x00}, FormatTrueType},
	{[]byte("OTTO"), FormatOpenType},
	{[]byte("wOFF"), FormatWOFF},
	{[]byte("wOF2"), FormatWOFF2},
	{[]byte("true"), FormatAppleTrue},
	{[]byte("typ1"), FormatType1},
	{[]byte("ttcf"), FormatCollection},
}

var htmlMarkers = [][]byte{
	[]byte("<!doctype html"),
	[]byte("<html"),
	[]byte("<head"),
}

// Inspect classifies a buffer. HTML is rejected before any signature check,
// regardless of length.
func Inspect(b []byte) Verdict {
	if len(b) < minFontBytes {
		return Verdict{Confidence: ConfidenceNone, Reason: "buffer shorter than 4 bytes"}
	}
	if looksLikeHTML(b) {
		return Verdict{Confidence: ConfidenceNone, Reason: "buffer is an HTML document"}
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(b, sig.magic) {
			return Verdict{Accepted: true, Format: sig.format, Confidence: ConfidenceMagic}
		}
	}
	// EOT keeps its magic number (0x504C, little-endian "LP") at offset 34.
	if len(b) >= eotMagicOffset+2 && b[eotMagicOffset] == 'L' && b[eotMagicOffset+1] == 'P' {
		return Verdict{Accepted: true, Format: FormatEOT, Confidence: ConfidenceMagic}
	}
	if len(b) > heuristicMinBytes {
		return Verdict{Accepted: true, Format: FormatUnknown, Confidence: ConfidenceHeuristic, Reason: "no known signature, accepted by size"}
	}
	return Verdict{Confidence: ConfidenceNone, Reason: "no known font signature"}
}

// IsValidFont reports whether Inspect accepts the buffer.
func IsValidFont(b []byte) bool {
	return Inspect(b).Accepted
}

func looksLikeHTML(b []byte) bool {
	head := b
	if len(head) > htmlSniffWindow {
		head = head[:htmlSniffWindow]
	}
	head = bytes.ToLower(head)
	for _, m := range htmlMarkers {
		if bytes.Contains(head, m) {
			return true
		}
	}
	return false
}

// FamilyName parses SFNT data (TrueType/OpenType) and returns its family
// name. It returns "" for WOFF, EOT and anything that does not parse; the
// result never affects a Verdict.
func FamilyName(b []byte) string {
	f, err := sfnt.Parse(b)
	if err != nil {
		return ""
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}
