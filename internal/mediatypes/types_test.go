package mediatypes

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		ext  string
		want MediaType
	}{
		{".jpg", MediaTypeImage},
		{".jpeg", MediaTypeImage},
		{".heic", MediaTypeImage},
		{".webp", MediaTypeImage},
		{".mp4", MediaTypeVideo},
		{".mkv", MediaTypeVideo},
		{".mts", MediaTypeVideo},
		{".mp3", MediaTypeAudio},
		{".flac", MediaTypeAudio},
		{".pdf", MediaTypeDocument},
		{".docx", MediaTypeDocument},
		{".exe", MediaTypeOther},
		{".go", MediaTypeOther},
		{"", MediaTypeOther},
		// Classify expects lowercase extensions; uppercase is unrecognized.
		{".JPG", MediaTypeOther},
	}

	for _, tt := range tests {
		if got := Classify(tt.ext); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".png", "image/png"},
		{".mp4", "video/mp4"},
		{".mov", "video/quicktime"},
		{".mp3", "audio/mpeg"},
		{".pdf", "application/pdf"},
		{".xyz", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestIsMediaFile(t *testing.T) {
	for _, ext := range []string{".jpg", ".mp4", ".mp3", ".pdf"} {
		if !IsMediaFile(ext) {
			t.Errorf("IsMediaFile(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".exe", ".iso", ""} {
		if IsMediaFile(ext) {
			t.Errorf("IsMediaFile(%q) = true, want false", ext)
		}
	}
}

// Every extension with a MIME type should classify as a real media type.
func TestMimeTableConsistency(t *testing.T) {
	for ext := range MimeTypes {
		if Classify(ext) == MediaTypeOther {
			t.Errorf("extension %q has a MIME type but classifies as other", ext)
		}
	}
}
