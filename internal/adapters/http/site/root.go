// Package site serves the embedded public leaderboard page.
package site

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
)

// ErrServe is reported when the embedded index cannot be served.
var ErrServe = errors.New("site serve failed")

const indexFile = "index.html"

// Register attaches the site to the root of mux. API routes registered with a
// more specific pattern take precedence.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves embedded assets and falls back to the index page for
// any other path, so client-side routes resolve.
type RootHandler struct {
	fsys  http.FileSystem
	files http.Handler
}

// NewRootHandler creates a root handler over the embedded assets.
func NewRootHandler() *RootHandler {
	fsys := FS()
	return &RootHandler{fsys: fsys, files: http.FileServer(fsys)}
}

// ServeHTTP answers GET and HEAD requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	name := path.Clean("/" + r.URL.Path)
	if name != "/" && h.exists(name) {
		h.files.ServeHTTP(w, r)
		return
	}
	h.serveIndex(w, r)
}

func (h *RootHandler) exists(name string) bool {
	f, err := h.fsys.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func (h *RootHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := h.fsys.Open(indexFile)
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}
