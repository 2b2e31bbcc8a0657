package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod": "module example.com/app\n\ngo 1.24\n",
		"services/api.go": `package services

//di::service -Implements=UserAPI
type RestUserAPI struct{}
`,
		"views/page.go": `package views

type PageServices struct {
	API di.Required[UserAPI]
}

type PageProps struct {
	Services PageServices
}

func Page(props PageProps) {
	svcs := props.Services
	render(svcs)
}

func render(args ...interface{}) {}
`,
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func TestRunTransforms(t *testing.T) {
	root := fixtureProject(t)

	code := run([]string{"-src", root, "-quiet"})
	assert.Equal(t, 0, code)

	// Dry run: the source file is untouched, artifacts are cached.
	content, err := os.ReadFile(filepath.Join(root, "views", "page.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "svcs := props.Services")

	entries, err := os.ReadDir(filepath.Join(root, ".renderwire", "cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunWrite(t *testing.T) {
	root := fixtureProject(t)

	code := run([]string{"-src", root, "-quiet", "-write"})
	assert.Equal(t, 0, code)

	content, err := os.ReadFile(filepath.Join(root, "views", "page.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `api := di.Resolve[UserAPI]("UserAPI")`)
	assert.NotContains(t, string(content), "svcs := props.Services")
}

func TestRunClean(t *testing.T) {
	root := fixtureProject(t)

	require.Equal(t, 0, run([]string{"-src", root, "-quiet"}))
	require.Equal(t, 0, run([]string{"-src", root, "-quiet", "-clean"}))

	_, err := os.Stat(filepath.Join(root, ".renderwire"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunInvalidFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-definitely-not-a-flag"}))
}
