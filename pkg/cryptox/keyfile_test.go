package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateKeyFile_CreatesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")

	first, err := LoadOrCreateKeyFile(path, TokenSize256)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrCreateKeyFile(path, TokenSize256)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing key must be reused")
}

func TestLoadOrCreateKeyFile_ReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  operator-supplied\n"), 0o600))

	value, err := LoadOrCreateKeyFile(path, TokenSize256)
	require.NoError(t, err)
	require.Equal(t, "operator-supplied", value)
}

func TestLoadOrCreateKeyFile_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := LoadOrCreateKeyFile("", TokenSize256)
		require.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

		_, err := LoadOrCreateKeyFile(path, TokenSize256)
		require.Error(t, err)
	})
}
