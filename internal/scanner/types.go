package scanner

import "time"

// FileInfo is one media file in a scan result. Field names match the JSON the
// frontend consumes.
type FileInfo struct {
	Filename     string    `json:"filename"`
	Path         string    `json:"path"` // directory relative to the scan root, "." at the root
	FullPath     string    `json:"fullPath"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"` // mediaType/extension, e.g. "image/jpg"
	Extension    string    `json:"extension"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	MediaType    string    `json:"mediaType"`
	ThumbnailURL string    `json:"thumbnailUrl"`
}

// MediaCounts holds per-type totals for a scan.
type MediaCounts struct {
	All      int `json:"all"`
	Image    int `json:"image"`
	Video    int `json:"video"`
	Audio    int `json:"audio"`
	Document int `json:"document"`
}

// Result is a completed scan stored in the session map.
type Result struct {
	CurrentPath string      `json:"currentPath"`
	IndexedAt   time.Time   `json:"indexedAt"`
	TotalFiles  int         `json:"totalFiles"`
	Files       []FileInfo  `json:"files"`
	ScanTimeMs  int64       `json:"scanTime"`
	MediaCounts MediaCounts `json:"mediaCounts"`
}

// ValidationStatus categorizes why a path failed validation.
type ValidationStatus string

const (
	ValidationOK               ValidationStatus = "ok"
	ValidationNotFound         ValidationStatus = "not-found"
	ValidationPermissionDenied ValidationStatus = "permission-denied"
	ValidationNotADirectory    ValidationStatus = "not-a-directory"
	ValidationOther            ValidationStatus = "other"
)

// Validation is the structured outcome of ValidatePath. This is the one error
// category that reaches end users verbatim, so the messages stay short and
// actionable.
type Validation struct {
	Valid  bool             `json:"valid"`
	Status ValidationStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// SearchResult is the response body for a session search.
type SearchResult struct {
	TotalResults int         `json:"totalResults"`
	CurrentPath  string      `json:"currentPath"`
	Files        []FileInfo  `json:"files"`
	MediaCounts  MediaCounts `json:"mediaCounts"`
}
