package gitsync

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edgarborja/SparkleShare/internal/utils"
)

// Sentinel files are the only durable state this core owns. They live
// in the tool's private metadata directory: an empty marker file whose
// existence means "there are unsynced local changes", and two cached
// numeric text files for size accounting.
const (
	unsyncedMarkerName  = "has_unsynced_changes"
	workingSizeName     = "repo_size"
	historySizeName     = "repo_history_size"
	metadataDirBaseName = ".git"
)

// Sentinels manages the marker and cache files for one working copy.
type Sentinels struct {
	workDir string
	gitDir  string
}

func NewSentinels(workDir, gitDir string) *Sentinels {
	return &Sentinels{workDir: workDir, gitDir: gitDir}
}

// SetUnsynced raises the unsynced-changes marker.
func (s *Sentinels) SetUnsynced() error {
	path := filepath.Join(s.gitDir, unsyncedMarkerName)
	if utils.FileExists(path) {
		return nil
	}
	return os.WriteFile(path, nil, 0o644)
}

// ClearUnsynced lowers the marker after a confirmed successful push.
func (s *Sentinels) ClearUnsynced() error {
	err := os.Remove(filepath.Join(s.gitDir, unsyncedMarkerName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HasUnsynced reports whether local changes are awaiting a push.
func (s *Sentinels) HasUnsynced() bool {
	return utils.FileExists(filepath.Join(s.gitDir, unsyncedMarkerName))
}

// RefreshSizes recomputes and caches the working-copy and history
// sizes. Called after each transfer; failures are logged, not fatal.
func (s *Sentinels) RefreshSizes() {
	working := utils.DirSize(s.workDir, metadataDirBaseName)
	history := utils.DirSize(s.gitDir)

	if err := writeSize(filepath.Join(s.gitDir, workingSizeName), working); err != nil {
		slog.Warn("size cache write failed", "file", workingSizeName, "error", err)
	}
	if err := writeSize(filepath.Join(s.gitDir, historySizeName), history); err != nil {
		slog.Warn("size cache write failed", "file", historySizeName, "error", err)
	}
}

// WorkingSize returns the cached working-copy size, 0 when unreadable.
func (s *Sentinels) WorkingSize() uint64 {
	return readSize(filepath.Join(s.gitDir, workingSizeName))
}

// HistorySize returns the cached history size, 0 when unreadable.
func (s *Sentinels) HistorySize() uint64 {
	return readSize(filepath.Join(s.gitDir, historySizeName))
}

func writeSize(path string, v uint64) error {
	return os.WriteFile(path, []byte(strconv.FormatUint(v, 10)), 0o644)
}

func readSize(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// KeepEmptyDirs drops a placeholder file into every empty directory
// under the working copy so the directory survives in history.
func (s *Sentinels) KeepEmptyDirs() error {
	return filepath.WalkDir(s.workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == metadataDirBaseName {
			return fs.SkipDir
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil
		}
		if len(entries) == 0 {
			if werr := os.WriteFile(filepath.Join(path, placeholderName), nil, 0o644); werr != nil {
				slog.Debug("placeholder write failed", "dir", path, "error", werr)
			}
		}
		return nil
	})
}
