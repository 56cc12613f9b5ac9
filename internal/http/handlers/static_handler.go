package handlers

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

// StaticPage serves a fixed page from the static directory.
func (h *Handlers) StaticPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveStatic(w, r, page)
	}
}

// StaticFile serves the request path relative to the static directory.
func (h *Handlers) StaticFile(w http.ResponseWriter, r *http.Request) {
	h.serveStatic(w, r, strings.TrimPrefix(r.URL.Path, "/"))
}

func (h *Handlers) serveStatic(w http.ResponseWriter, r *http.Request, rel string) {
	// Clean against the root so "../" cannot escape the static dir.
	full := filepath.Join(h.config.Static.Dir, filepath.Clean("/"+rel))

	if info, err := os.Stat(full); err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
	}

	data, err := os.ReadFile(full)
	if err != nil {
		logger.DebugContext(r.Context(), "static miss", "path", full, "error", err)
		response.NotFound(w, "not found")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(full))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
