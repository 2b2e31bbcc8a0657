package cli

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/renderwire/renderwire/internal/models"
)

// DirectoryScanner enumerates the Go source files of a project root.
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// ScanGoFiles returns every non-test .go file under root in lexical
// order. Hidden and underscore-prefixed directories are skipped. Patterns
// ending in /... are accepted for symmetry with Go tooling and scan the
// base directory recursively (which is the default behavior anyway).
func (s *DirectoryScanner) ScanGoFiles(root string) ([]string, error) {
	root = strings.TrimSuffix(root, "/...")
	if root == "" {
		root = "."
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &models.RewriteError{
			Type:    models.ErrorTypeFileSystem,
			Message: "failed to resolve source root " + root,
			Cause:   err,
		}
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &models.RewriteError{
			Type:    models.ErrorTypeFileSystem,
			Message: "failed to scan source tree " + absRoot,
			Cause:   err,
		}
	}
	return files, nil
}
