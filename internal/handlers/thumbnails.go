package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// ServeThumbnail serves a generated image thumbnail artifact.
func (h *Handlers) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r)
}

// ServeVideoThumbnail serves a generated video thumbnail artifact.
func (h *Handlers) ServeVideoThumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r)
}

// serveArtifact streams an artifact from the cache directory with long-lived
// cache headers, bumping its access time for LRU ordering. Keys are content
// hashes, so a served artifact never changes under its name.
func (h *Handlers) serveArtifact(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, err := h.thumbs.Resolve(filename)
	if err != nil {
		writeJSONError(w, "invalid thumbnail name", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeJSONError(w, "thumbnail not found", http.StatusNotFound)
		return
	}

	h.thumbs.TouchArtifact(path)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	http.ServeFile(w, r, path)
}
