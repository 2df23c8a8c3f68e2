// Package web holds the dashboard templates and stylesheet compiled into the
// server binary.
package web

import "embed"

// TemplatesFS holds the page layouts and the HTMX fragments.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS is served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
