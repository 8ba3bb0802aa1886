package cryptox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreateKeyFile returns the contents of the file at path. When the
// file does not exist a random base64url value of size bytes is generated
// and written with 0600 permissions, so the same value is used on the next
// start.
func LoadOrCreateKeyFile(path string, size int) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("cryptox: key file path is empty")
	}
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		value := strings.TrimSpace(string(data))
		if value == "" {
			return "", fmt.Errorf("cryptox: key file %s is empty", path)
		}
		return value, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("cryptox: read key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("cryptox: create key dir: %w", err)
	}

	value, err := GenerateToken(size)
	if err != nil {
		return "", err
	}

	// O_EXCL so two processes starting together don't overwrite each other.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return LoadOrCreateKeyFile(path, size)
		}
		return "", fmt.Errorf("cryptox: create key file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(value); err != nil {
		return "", fmt.Errorf("cryptox: write key file: %w", err)
	}

	return value, nil
}
