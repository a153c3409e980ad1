// Package views holds the admin HTML templates.
package views

import "embed"

//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS
