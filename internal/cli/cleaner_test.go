package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRemovesGeneratedTree(t *testing.T) {
	root := fixtureProject(t)
	pipeline := NewPipeline(testConfig(root), nil)
	_, err := pipeline.TransformForBuild()
	require.NoError(t, err)

	generated := filepath.Join(root, ".renderwire")
	_, err = os.Stat(generated)
	require.NoError(t, err)

	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Clean(root))

	_, err = os.Stat(generated)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanWithoutArtifacts(t *testing.T) {
	cleaner := NewCleaner(nil)
	assert.NoError(t, cleaner.Clean(t.TempDir()))
}
