// Package web embeds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS holds the login page, the dashboard page and its htmx partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
