// Package views holds the HTML templates compiled into the binary.
package views

import "embed"

//go:embed *.html layouts/*.html
var FS embed.FS
