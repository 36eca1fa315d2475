package mediatypes

// MediaType represents the classification of a media file.
type MediaType string

const (
	// MediaTypeImage represents an image file.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo represents a video file.
	MediaTypeVideo MediaType = "video"
	// MediaTypeAudio represents an audio file.
	MediaTypeAudio MediaType = "audio"
	// MediaTypeDocument represents a document file.
	MediaTypeDocument MediaType = "document"
	// MediaTypeOther represents an unknown or unsupported file type.
	MediaTypeOther MediaType = "other"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true, ".ico": true,
	".tiff": true, ".tif": true, ".heic": true, ".heif": true,
	".raw": true, ".psd": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".mkv": true, ".webm": true, ".m4v": true,
	".mpg": true, ".mpeg": true, ".3gp": true, ".mts": true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".aac": true,
	".ogg": true, ".m4a": true, ".wma": true, ".opus": true,
	".aiff": true, ".ape": true,
}

// DocumentExtensions maps file extensions to whether they are supported document formats.
var DocumentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true,
	".pptx": true, ".xls": true, ".xlsx": true, ".txt": true,
	".rtf": true, ".odt": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",

	// Videos
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".3gp":  "video/3gpp",
	".mts":  "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".opus": "audio/opus",

	// Documents
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Classify returns the MediaType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns MediaTypeOther if the extension is not recognized.
func Classify(ext string) MediaType {
	if ImageExtensions[ext] {
		return MediaTypeImage
	}
	if VideoExtensions[ext] {
		return MediaTypeVideo
	}
	if AudioExtensions[ext] {
		return MediaTypeAudio
	}
	if DocumentExtensions[ext] {
		return MediaTypeDocument
	}
	return MediaTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return Classify(ext) != MediaTypeOther
}
