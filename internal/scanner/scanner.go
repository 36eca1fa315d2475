package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"media-explorer/internal/logging"
	"media-explorer/internal/mediatypes"
	"media-explorer/internal/metrics"
	"media-explorer/internal/thumbnail"
	"media-explorer/internal/workers"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxDepth is used when the request does not specify one.
	DefaultMaxDepth = 3
	// MaxDepthCap bounds how deep a client may ask to walk.
	MaxDepthCap = 5
)

// skipDirs are directory names never descended into. Dotted names are
// handled separately.
var skipDirs = map[string]bool{
	"node_modules":              true,
	"$RECYCLE.BIN":              true,
	"System Volume Information": true,
}

// Scanner walks directories and maintains scan sessions.
type Scanner struct {
	thumbs  *thumbnail.Generator
	workers int

	mu       sync.Mutex
	sessions map[string]*Result

	recentMu sync.Mutex
	recent   []string
}

// New builds a Scanner. thumbs may be nil to disable thumbnail generation
// (files are still classified and searchable).
func New(thumbs *thumbnail.Generator) *Scanner {
	return &Scanner{
		thumbs:   thumbs,
		workers:  workers.ForMixed(),
		sessions: make(map[string]*Result),
	}
}

// ValidatePath categorizes whether a path is a scannable directory.
func ValidatePath(path string) Validation {
	if path == "" {
		return Validation{Status: ValidationOther, Error: "Path is required"}
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Validation{Status: ValidationNotFound, Error: "Path does not exist"}
	case os.IsPermission(err):
		return Validation{Status: ValidationPermissionDenied, Error: "Permission denied"}
	case err != nil:
		return Validation{Status: ValidationOther, Error: err.Error()}
	case !info.IsDir():
		return Validation{Status: ValidationNotADirectory, Error: "Path is not a directory"}
	}

	// Stat alone does not prove readability.
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return Validation{Status: ValidationPermissionDenied, Error: "Permission denied"}
		}
		return Validation{Status: ValidationOther, Error: err.Error()}
	}
	f.Close()

	return Validation{Valid: true, Status: ValidationOK}
}

// Scan walks root, classifies media files, generates thumbnails through the
// worker pool and stores the result under sessionID. The walk itself is
// single-threaded; thumbnail generation is where the time goes and where the
// pool parallelizes.
func (s *Scanner) Scan(ctx context.Context, root, sessionID string, includeSubfolders bool, maxDepth int) (*Result, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxDepth > MaxDepthCap {
		maxDepth = MaxDepthCap
	}
	if !includeSubfolders {
		maxDepth = 1
	}

	started := time.Now()
	logging.Info("Scanning %s (depth %d, session %s)", root, maxDepth, sessionID)

	files, err := s.walk(ctx, root, root, maxDepth, 0)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.generateThumbnails(ctx, files)

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})

	counts := MediaCounts{All: len(files)}
	for _, f := range files {
		switch mediatypes.MediaType(f.MediaType) {
		case mediatypes.MediaTypeImage:
			counts.Image++
		case mediatypes.MediaTypeVideo:
			counts.Video++
		case mediatypes.MediaTypeAudio:
			counts.Audio++
		case mediatypes.MediaTypeDocument:
			counts.Document++
		}
	}

	elapsed := time.Since(started)
	result := &Result{
		CurrentPath: root,
		IndexedAt:   time.Now(),
		TotalFiles:  len(files),
		Files:       files,
		ScanTimeMs:  elapsed.Milliseconds(),
		MediaCounts: counts,
	}

	s.mu.Lock()
	if _, existed := s.sessions[sessionID]; !existed {
		metrics.ActiveSessions.Inc()
	}
	s.sessions[sessionID] = result
	s.mu.Unlock()

	s.AddRecent(root)

	metrics.ScansTotal.WithLabelValues("success").Inc()
	metrics.ScanDuration.Observe(elapsed.Seconds())
	metrics.ScanFilesFound.Observe(float64(len(files)))
	logging.Info("Scan complete: %d files in %s", len(files), elapsed.Round(time.Millisecond))

	return result, nil
}

// walk recursively collects media files up to maxDepth. Unreadable
// subdirectories are logged and skipped so one bad mount cannot kill a scan.
func (s *Scanner) walk(ctx context.Context, dir, root string, maxDepth, depth int) ([]FileInfo, error) {
	if depth >= maxDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			return nil, fmt.Errorf("read directory %s: %w", dir, err)
		}
		logging.Debug("Skipping unreadable directory %s: %v", dir, err)
		return nil, nil
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				continue
			}
			sub, err := s.walk(ctx, full, root, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		mediaType := mediatypes.Classify(ext)
		if mediaType == mediatypes.MediaTypeOther {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Debug("Skipping unstatable file %s: %v", full, err)
			continue
		}

		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = "."
		}

		extension := strings.TrimPrefix(ext, ".")
		files = append(files, FileInfo{
			Filename:   norm.NFC.String(name),
			Path:       norm.NFC.String(rel),
			FullPath:   norm.NFC.String(full),
			Size:       info.Size(),
			Type:       string(mediaType) + "/" + extension,
			Extension:  extension,
			ModifiedAt: info.ModTime(),
			MediaType:  string(mediaType),
		})
	}
	return files, nil
}

// generateThumbnails fills ThumbnailURL for image and video entries using a
// bounded worker pool. Each worker writes only its own element, so no
// locking is needed around the slice.
func (s *Scanner) generateThumbnails(ctx context.Context, files []FileInfo) {
	if s.thumbs == nil {
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f := &files[i]
				switch mediatypes.MediaType(f.MediaType) {
				case mediatypes.MediaTypeImage:
					f.ThumbnailURL = s.thumbs.ImageThumbnail(f.FullPath)
				case mediatypes.MediaTypeVideo:
					f.ThumbnailURL = s.thumbs.VideoThumbnail(ctx, f.FullPath)
				}
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// Session returns the stored result for an ID, or nil.
func (s *Scanner) Session(sessionID string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID]
}
