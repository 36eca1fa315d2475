package scanner

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSearchResults caps a search response. The frontend paginates client-side
// over this window.
const maxSearchResults = 500

// ErrNoSession means no scan has been stored under the given session ID.
var ErrNoSession = errors.New("no scan data found, scan a folder first")

// Search filters a session's files by query text, media type and an optional
// bookmark set. Matching is diacritic-stable (NFC), case-insensitive and
// tolerant of whitespace differences, which matters for CJK filenames where
// spacing varies between input methods.
func (s *Scanner) Search(sessionID, query, mediaType string, bookmarks []string, bookmarkedOnly bool) (*SearchResult, error) {
	session := s.Session(sessionID)
	if session == nil {
		return nil, ErrNoSession
	}

	files := session.Files

	if bookmarkedOnly && len(bookmarks) > 0 {
		marked := make(map[string]bool, len(bookmarks))
		for _, b := range bookmarks {
			marked[b] = true
		}
		files = filter(files, func(f FileInfo) bool {
			return marked[f.FullPath]
		})
	}

	if q := strings.TrimSpace(query); q != "" {
		nq := normalizeQuery(q)
		files = filter(files, func(f FileInfo) bool {
			return strings.Contains(normalizeQuery(f.Filename), nq) ||
				strings.Contains(normalizeQuery(f.Path), nq)
		})
	}

	if mediaType != "" && mediaType != "all" {
		files = filter(files, func(f FileInfo) bool {
			return f.MediaType == mediaType
		})
	}

	total := len(files)
	if len(files) > maxSearchResults {
		files = files[:maxSearchResults]
	}

	return &SearchResult{
		TotalResults: total,
		CurrentPath:  session.CurrentPath,
		Files:        files,
		MediaCounts:  session.MediaCounts,
	}, nil
}

// normalizeQuery folds a string to its comparable form: NFC, lowercase, all
// whitespace removed.
func normalizeQuery(s string) string {
	folded := strings.ToLower(norm.NFC.String(s))
	return strings.Join(strings.Fields(folded), "")
}

func filter(files []FileInfo, keep func(FileInfo) bool) []FileInfo {
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
