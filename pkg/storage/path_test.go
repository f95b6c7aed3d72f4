package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "pinitdown/pkg/errors"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/pins", filepath.Join(home, "pins")},
		{"  ~/pins/art ", filepath.Join(home, "pins", "art")},
		{"downloads", filepath.Join(wd, "downloads")},
		{"/srv/pins", filepath.Clean("/srv/pins")},
		{"~someone/pins", filepath.Join(wd, "~someone", "pins")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			if filepath.IsAbs(tt.in) {
				assert.True(t, filepath.IsAbs(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepareDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := PrepareDir("~/pins/boards")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "pins", "boards"), got)
	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepareDir_OnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := PrepareDir(filepath.Join(file, "pins"))

	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))
}
