package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	errs "pinitdown/pkg/errors"
)

const tempPattern = ".pinitdown-*.part"

// Manager writes downloaded assets into one output directory
type Manager struct {
	outputDir string
	saved     int
	mu        sync.Mutex
}

// NewManager creates a storage manager for outputDir. The directory is
// created lazily by EnsureDir.
func NewManager(outputDir string) *Manager {
	return &Manager{outputDir: outputDir}
}

// EnsureDir creates the output directory and any missing parents
func (m *Manager) EnsureDir() error {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return errs.WriteFailed(causeOf(err), m.outputDir, fmt.Errorf("failed to create output directory: %w", err))
	}
	info, err := os.Stat(m.outputDir)
	if err != nil {
		return errs.WriteFailed(causeOf(err), m.outputDir, err)
	}
	if !info.IsDir() {
		return errs.WriteFailed(errs.CausePathInvalid, m.outputDir, errors.New("not a directory"))
	}
	return nil
}

// Exists reports whether name is already present in the output directory
func (m *Manager) Exists(name string) bool {
	_, err := os.Lstat(filepath.Join(m.outputDir, name))
	return err == nil
}

// Write stores data under name and returns the full path. The data lands in
// a temporary file first and is renamed into place, so a failed write never
// leaves a partial file under the final name. An existing file is never
// replaced.
func (m *Manager) Write(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", errs.WriteFailed(errs.CausePathInvalid, name, errors.New("invalid file name"))
	}
	final := filepath.Join(m.outputDir, name)

	tmp, err := os.CreateTemp(m.outputDir, tempPattern)
	if err != nil {
		return "", errs.WriteFailed(causeOf(err), final, fmt.Errorf("failed to create temporary file: %w", err))
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return "", errs.WriteFailed(causeOf(err), final, fmt.Errorf("failed to save data: %w", err))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", errs.WriteFailed(causeOf(err), final, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Exists(name) {
		os.Remove(tmpName)
		return "", errs.WriteFailed(errs.CauseIO, final, fs.ErrExist)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", errs.WriteFailed(causeOf(err), final, fmt.Errorf("failed to rename temporary file: %w", err))
	}
	m.saved++

	return final, nil
}

// SavedCount returns the number of files written by this manager
func (m *Manager) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}

// causeOf maps an OS error onto a write failure cause
func causeOf(err error) errs.Cause {
	switch {
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		return errs.CausePermission
	case errors.Is(err, syscall.ENOSPC):
		return errs.CauseDiskFull
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.ENAMETOOLONG),
		errors.Is(err, syscall.EISDIR):
		return errs.CausePathInvalid
	}
	return errs.CauseIO
}
