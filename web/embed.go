// Package web provides the embedded public page templates and the stylesheet
// they reference. Static files are served at /static/.
package web

import "embed"

// TemplatesFS embeds the public layout templates rendered by the engine.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
