package testhelpers

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Chdir changes the working directory to path until the test finishes
func Chdir(t testing.TB, path string) {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err, "Cannot Getwd")

	require.NoError(t, os.Chdir(path), "Cannot Chdir")

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(cwd), "Cannot Chdir in cleanup")
	})
}
