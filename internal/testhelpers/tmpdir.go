package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TmpDir returns a temporary directory with all symlinks evaluated
func TmpDir(tb testing.TB) string {
	tb.Helper()

	// On some systems `/tmp` can be a symlink
	tmpDir, err := filepath.EvalSymlinks(tb.TempDir())
	require.NoError(tb, err)

	return tmpDir
}

// Files creates every file of files under dir, with its parent directories.
// Keys ending in "/" create an empty directory.
func Files(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))

		if name[len(name)-1] == '/' {
			require.NoError(tb, os.MkdirAll(path, 0755))
			continue
		}

		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(tb, os.WriteFile(path, []byte(content), 0644))
	}
}

// Symlink creates newname relative to dir pointing to oldname
func Symlink(tb testing.TB, dir, oldname, newname string) {
	tb.Helper()

	path := filepath.Join(dir, filepath.FromSlash(newname))
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tb, os.Symlink(oldname, path))
}
