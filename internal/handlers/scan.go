package handlers

import (
	"fmt"
	"net/http"

	"media-explorer/internal/scanner"
)

// ValidatePathRequest is the body of POST /api/validate-path.
type ValidatePathRequest struct {
	Path string `json:"path"`
}

// ValidatePath answers whether a path is a scannable directory. The response
// is always 200 with a structured verdict; only a malformed body is an HTTP
// error.
func (h *Handlers) ValidatePath(w http.ResponseWriter, r *http.Request) {
	var req ValidatePathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, scanner.ValidatePath(req.Path))
}

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Path              string `json:"path"`
	SessionID         string `json:"sessionId"`
	IncludeSubfolders *bool  `json:"includeSubfolders"`
	MaxDepth          int    `json:"maxDepth"`
}

// FFmpegInfo summarizes video pipeline availability in scan responses.
type FFmpegInfo struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
}

// ScanResponse is the body of a successful scan.
type ScanResponse struct {
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	TotalFiles  int                 `json:"totalFiles"`
	CurrentPath string              `json:"currentPath"`
	ScanTime    int64               `json:"scanTime"`
	FFmpeg      FFmpegInfo          `json:"ffmpegInfo"`
	MediaCounts scanner.MediaCounts `json:"mediaCounts"`
}

// Scan validates the target, walks it, stores the result under the session
// and returns summary counts.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" || req.SessionID == "" {
		writeJSONError(w, "Path and sessionId are required", http.StatusBadRequest)
		return
	}

	if v := scanner.ValidatePath(req.Path); !v.Valid {
		writeJSONError(w, v.Error, http.StatusBadRequest)
		return
	}

	includeSubfolders := true
	if req.IncludeSubfolders != nil {
		includeSubfolders = *req.IncludeSubfolders
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = h.maxDepth
	}

	result, err := h.scanner.Scan(r.Context(), req.Path, req.SessionID, includeSubfolders, maxDepth)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, ScanResponse{
		Status:      "success",
		Message:     fmt.Sprintf("Found %d media files in %dms", result.TotalFiles, result.ScanTimeMs),
		TotalFiles:  result.TotalFiles,
		CurrentPath: result.CurrentPath,
		ScanTime:    result.ScanTimeMs,
		FFmpeg: FFmpegInfo{
			Available: h.accel.Available(),
			Path:      h.accel.FFmpegPath(),
		},
		MediaCounts: result.MediaCounts,
	})
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	SessionID      string   `json:"sessionId"`
	Query          string   `json:"query"`
	MediaType      string   `json:"mediaType"`
	Bookmarks      []string `json:"bookmarks"`
	BookmarkedOnly bool     `json:"bookmarkedOnly"`
}

// Search filters the session's scan result.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeJSONError(w, "SessionId is required", http.StatusBadRequest)
		return
	}

	result, err := h.scanner.Search(req.SessionID, req.Query, req.MediaType, req.Bookmarks, req.BookmarkedOnly)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, struct {
		Status string `json:"status"`
		*scanner.SearchResult
	}{"success", result})
}

// RecentPaths lists recently scanned roots, seeded with OS defaults.
func (h *Handlers) RecentPaths(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "success",
		"paths":  h.scanner.RecentPaths(),
	})
}
