// Package web embeds the browser dashboard served at /.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// FS returns the dashboard files rooted at index.html.
func FS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static is embedded at build time, so this cannot fail
		panic(err)
	}
	return sub
}
