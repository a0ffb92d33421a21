package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:web
var webFS embed.FS

// WebFS returns the embedded dashboard filesystem with the "web" prefix stripped.
func WebFS() (fs.FS, error) {
	return fs.Sub(webFS, "web")
}

// Handler returns an http.Handler that serves the embedded dashboard.
// Static assets are served directly. Paths without a file extension fall
// back to index.html. Missing assets return 404.
func Handler() (http.Handler, error) {
	sub, err := WebFS()
	if err != nil {
		return nil, err
	}

	fileServer := http.FileServerFS(sub)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean(r.URL.Path)
		if p == "/" {
			fileServer.ServeHTTP(w, r)
			return
		}

		p = strings.TrimPrefix(p, "/")

		if _, err := fs.Stat(sub, p); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		if strings.Contains(p, ".") {
			http.NotFound(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	}), nil
}
