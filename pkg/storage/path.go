package storage

import (
	"os"
	"path/filepath"
	"strings"

	errs "pinitdown/pkg/errors"
)

// ExpandPath replaces a leading ~ with the user's home directory and makes
// the result absolute
func ExpandPath(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errs.WriteFailed(errs.CausePathInvalid, dir, err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.WriteFailed(errs.CausePathInvalid, dir, err)
	}
	return abs, nil
}

// PrepareDir expands dir and creates it, returning the absolute path
func PrepareDir(dir string) (string, error) {
	abs, err := ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if err := NewManager(abs).EnsureDir(); err != nil {
		return "", err
	}
	return abs, nil
}
