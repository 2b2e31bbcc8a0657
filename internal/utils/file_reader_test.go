package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReaderReadFile(t *testing.T) {
	reader := NewFileReader()

	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte("package sample\n"), 0644))

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sample\n", content)
	assert.Equal(t, 1, reader.CacheSize())

	// Second read comes from the cache.
	content, err = reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sample\n", content)
}

func TestFileReaderInvalidatesOnChange(t *testing.T) {
	reader := NewFileReader()

	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte("package sample\n"), 0644))

	_, err := reader.ReadFile(path)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("package sample // changed\n"), 0644))

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sample // changed\n", content)
}

func TestFileReaderMissingFile(t *testing.T) {
	reader := NewFileReader()
	_, err := reader.ReadFile("/nonexistent/sample.go")
	assert.Error(t, err)
}

func TestFileReaderClearCache(t *testing.T) {
	reader := NewFileReader()

	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte("package sample\n"), 0644))
	_, err := reader.ReadFile(path)
	require.NoError(t, err)

	reader.ClearCache()
	assert.Equal(t, 0, reader.CacheSize())
}
