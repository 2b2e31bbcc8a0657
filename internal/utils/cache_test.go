package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, 42, value)

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)
}

func TestCacheClear(t *testing.T) {
	cache := NewCache[string, string]()

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCacheFileValidation(t *testing.T) {
	cache := NewCache[string, string]()

	tmpFile := filepath.Join(t.TempDir(), "test.txt")
	content := "initial content"
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	require.NoError(t, cache.SetWithFileInfo("test", content, tmpFile))

	value, exists := cache.GetWithFileValidation("test", tmpFile)
	assert.True(t, exists)
	assert.Equal(t, content, value)

	// Ensure a different modtime before rewriting.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(tmpFile, []byte("modified content that is longer"), 0644))

	_, exists = cache.GetWithFileValidation("test", tmpFile)
	assert.False(t, exists)
	assert.Equal(t, 0, cache.Size())
}

func TestCacheSetWithFileInfoNonExistentFile(t *testing.T) {
	cache := NewCache[string, string]()
	assert.Error(t, cache.SetWithFileInfo("test", "content", "/nonexistent/file.txt"))
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache[string, int]()
	done := make(chan bool, 10)

	for i := 0; i < 5; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				cache.Set(fmt.Sprintf("key%d_%d", id, j), id*100+j)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 5; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				cache.Get(fmt.Sprintf("key%d_%d", id, j))
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, 500, cache.Size())
}
