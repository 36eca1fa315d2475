package scanner

import (
	"os"
	"path/filepath"
	"runtime"
)

// maxRecentPaths caps the recent-paths list.
const maxRecentPaths = 10

// AddRecent records a successfully scanned path, most recent first.
func (s *Scanner) AddRecent(path string) {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	for i, p := range s.recent {
		if p == path {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.recent = append([]string{path}, s.recent...)
	if len(s.recent) > maxRecentPaths {
		s.recent = s.recent[:maxRecentPaths]
	}
}

// RecentPaths returns the recent scan roots, seeding the list with the OS
// default user directories when nothing has been scanned yet.
func (s *Scanner) RecentPaths() []string {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	if len(s.recent) == 0 {
		s.recent = DefaultPaths()
	}
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// DefaultPaths lists the standard user media directories that exist on this
// machine.
func DefaultPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}

	names := []string{"Desktop", "Documents", "Pictures", "Downloads"}
	switch runtime.GOOS {
	case "darwin":
		names = append(names, "Movies")
	default:
		names = append(names, "Videos")
	}

	paths := []string{home}
	for _, n := range names {
		paths = append(paths, filepath.Join(home, n))
	}

	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			existing = append(existing, p)
		}
	}
	return existing
}
