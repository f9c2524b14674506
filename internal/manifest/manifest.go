package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/logging"
)

// UploadStatus records the outcome of the most recent sync attempt for a
// category's current Latest file.
type UploadStatus string

const (
	StatusNever   UploadStatus = "never"
	StatusSuccess UploadStatus = "success"
	StatusFailure UploadStatus = "failure"
	StatusSkipped UploadStatus = "skipped"
)

// FileIdentity pins a Latest file to the bytes that were actually seen:
// path plus size and modification time.
type FileIdentity struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Identify stats a file and returns its identity.
func Identify(path string) (FileIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileIdentity{}, err
	}
	return FileIdentity{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Equal reports whether two identities refer to the same file contents.
func (id FileIdentity) Equal(other FileIdentity) bool {
	return id.Path == other.Path && id.Size == other.Size && id.ModTime.Equal(other.ModTime)
}

// Entry is the durable record for one category.
type Entry struct {
	Category     category.Category `json:"category"`
	Latest       *FileIdentity     `json:"latest_file,omitempty"`
	OrganizedAt  time.Time         `json:"organized_at,omitempty"`
	UploadStatus UploadStatus      `json:"upload_status"`
	UploadedAt   time.Time         `json:"uploaded_at,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
}

// EffectiveStatus interprets the stored status against what is on disk now.
// A recorded outcome only speaks for the file it was recorded against; once
// the Latest file changes, the category reads as never-synced again.
func (e Entry) EffectiveStatus(onDisk *FileIdentity) UploadStatus {
	if e.UploadStatus == "" {
		return StatusNever
	}
	if onDisk == nil || e.Latest == nil {
		return e.UploadStatus
	}
	if !e.Latest.Equal(*onDisk) {
		return StatusNever
	}
	return e.UploadStatus
}

// Manifest is the single source of truth for what has been propagated to the
// remote store. It is owned exclusively by the invoking pass: the caller
// loads it at pass start and persists it once at pass end.
type Manifest struct {
	path    string
	entries map[category.Category]Entry
}

// Load reads the manifest at path. A missing or unreadable manifest is not an
// error: upload history is recoverable by re-syncing, so the pass starts from
// an empty mapping instead of failing.
func Load(path string, logger *slog.Logger) *Manifest {
	logger = logging.NewComponentLogger(logger, "manifest")
	m := &Manifest{path: path, entries: make(map[category.Category]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("manifest unreadable, reinitializing empty",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "a full re-sync will rebuild upload history"))
		}
		return m
	}
	if len(data) == 0 {
		return m
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("manifest corrupt, reinitializing empty",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "a full re-sync will rebuild upload history"))
		return m
	}

	for _, entry := range entries {
		if entry.Category == "" {
			continue
		}
		if entry.UploadStatus == "" {
			entry.UploadStatus = StatusNever
		}
		m.entries[entry.Category] = entry
	}
	return m
}

// Entry returns the record for a category. Absent categories implicitly start
// at never-uploaded.
func (m *Manifest) Entry(c category.Category) Entry {
	if entry, ok := m.entries[c]; ok {
		return entry
	}
	return Entry{Category: c, UploadStatus: StatusNever}
}

// Set stores a category's record in memory; Save makes it durable.
func (m *Manifest) Set(entry Entry) {
	if entry.Category == "" {
		return
	}
	if entry.UploadStatus == "" {
		entry.UploadStatus = StatusNever
	}
	m.entries[entry.Category] = entry
}

// RecordOrganized updates a category's Latest identity after the organizer
// promotes a new file. Upload fields are left as they are; EffectiveStatus
// reports them stale once the identity no longer matches.
func (m *Manifest) RecordOrganized(c category.Category, id FileIdentity, now time.Time) {
	entry := m.Entry(c)
	entry.Latest = &id
	entry.OrganizedAt = now
	m.Set(entry)
}

// Len returns the number of recorded categories.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Save writes the manifest atomically: marshal to a temp file, then rename
// over the destination so a concurrent reader never sees a partial document.
func (m *Manifest) Save() error {
	entries := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Category < entries[j].Category
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp manifest: %w", err)
	}
	return nil
}
