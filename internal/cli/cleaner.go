package cli

import (
	"os"
	"path/filepath"

	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/utils"
)

// Cleaner removes generated artifacts from an output directory.
type Cleaner struct {
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a cleaner.
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Cleaner{diagnostics: diagnostics}
}

// Clean removes the .renderwire tree (cache artifact sets and debug
// output) under outputDir. A missing tree is not an error.
func (c *Cleaner) Clean(outputDir string) error {
	target := filepath.Join(outputDir, ".renderwire")
	if _, err := os.Stat(target); os.IsNotExist(err) {
		c.diagnostics.Info("Nothing to clean in %s", outputDir)
		return nil
	}
	if err := os.RemoveAll(target); err != nil {
		return &models.RewriteError{
			Type:    models.ErrorTypeFileSystem,
			Message: "failed to remove " + target,
			Cause:   err,
		}
	}
	c.diagnostics.Progress("Removed generated artifacts in %s", target)
	return nil
}
