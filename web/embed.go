// Package web embeds the static assets served under /static.
package web

import "embed"

// FS holds web/static; serve it through echo.MustSubFS(FS, "static").
//
//go:embed static
var FS embed.FS
