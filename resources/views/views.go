// Package views embeds the HTML pages rendered through pkg/view.
package views

import "embed"

//go:embed *.html
var FS embed.FS
