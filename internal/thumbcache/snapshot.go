package thumbcache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"media-explorer/internal/logging"
)

// snapshot is the on-disk index format. Files serialize as [path, entry]
// pairs rather than a plain object so the layout stays compatible with the
// historical metadata file.
type snapshot struct {
	Files       []fileEntry `json:"files"`
	TotalSize   int64       `json:"totalSize"`
	LastCleanup int64       `json:"lastCleanup"`
}

type fileEntry struct {
	Path  string
	Entry Entry
}

func (f fileEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.Path, f.Entry})
}

func (f *fileEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &f.Path); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &f.Entry)
}

func (c *Cache) snapshotPath() string {
	return filepath.Join(c.cfg.Dir, snapshotFileName)
}

// load reads the snapshot into the index. Anything wrong with it means an
// empty index, never an error to the caller.
func (c *Cache) load() {
	data, err := os.ReadFile(c.snapshotPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Failed to read cache snapshot: %v", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logging.Warn("Corrupt cache snapshot, starting with an empty index: %v", err)
		return
	}

	c.mu.Lock()
	for _, f := range snap.Files {
		entry := f.Entry
		entry.Path = f.Path
		c.files[f.Path] = &entry
	}
	c.totalSize = snap.TotalSize
	c.lastCleanup = snap.LastCleanup
	c.clampLocked()
	c.mu.Unlock()

	logging.Debug("Loaded cache snapshot: %d files, %d bytes", len(snap.Files), snap.TotalSize)
}

// snapshotLocked copies the index for serialization off-lock.
func (c *Cache) snapshotLocked() snapshot {
	snap := snapshot{
		Files:       make([]fileEntry, 0, len(c.files)),
		TotalSize:   c.totalSize,
		LastCleanup: c.lastCleanup,
	}
	for path, e := range c.files {
		snap.Files = append(snap.Files, fileEntry{Path: path, Entry: *e})
	}
	return snap
}

// save serializes the current index and writes it. Used by the fire-and-forget
// path after Record.
func (c *Cache) save() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.writeSnapshot(snap)
}

// writeSnapshot persists via temp-file-then-rename so a crash mid-write never
// leaves a truncated snapshot. Failures are logged; the in-memory index stays
// authoritative.
func (c *Cache) writeSnapshot(snap snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logging.Warn("Failed to encode cache snapshot: %v", err)
		return
	}
	tmp := c.snapshotPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logging.Warn("Failed to write cache snapshot: %v", err)
		return
	}
	if err := os.Rename(tmp, c.snapshotPath()); err != nil {
		logging.Warn("Failed to replace cache snapshot: %v", err)
	}
}
