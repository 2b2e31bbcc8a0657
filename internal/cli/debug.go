package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DebugWriter persists per-file pre/post snapshots and a transformation
// log. Debug artifacts are purely diagnostic and never read back by the
// pipeline; the run id is bookkeeping only and never feeds the
// configuration identity.
type DebugWriter struct {
	dir     string
	enabled bool
	lines   []string
}

// NewDebugWriter creates a debug writer under
// <outputDir>/.renderwire/debug/<runID>. When disabled it is a no-op.
func NewDebugWriter(outputDir string, enabled bool) *DebugWriter {
	if !enabled {
		return &DebugWriter{}
	}
	runID := uuid.NewString()
	return &DebugWriter{
		dir:     filepath.Join(outputDir, ".renderwire", "debug", runID),
		enabled: true,
	}
}

// WriteSnapshot stores the before/after pair for one transformed file.
func (w *DebugWriter) WriteSnapshot(filePath, pre, post string) {
	if !w.enabled {
		return
	}
	base := strings.TrimSuffix(filepath.Base(filePath), ".go")
	w.writeFile(base+".pre.go", pre)
	w.writeFile(base+".post.go", post)
}

// Logf appends a line to the transformation log.
func (w *DebugWriter) Logf(format string, args ...interface{}) {
	if !w.enabled {
		return
	}
	line := fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	w.lines = append(w.lines, line)
}

// Flush writes the accumulated transformation log.
func (w *DebugWriter) Flush() {
	if !w.enabled || len(w.lines) == 0 {
		return
	}
	w.writeFile("transform.log", strings.Join(w.lines, "\n")+"\n")
}

// Dir returns the debug directory, empty when disabled.
func (w *DebugWriter) Dir() string {
	return w.dir
}

func (w *DebugWriter) writeFile(name, content string) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return
	}
	// Debug output is best-effort; failures never affect the run.
	_ = os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0644)
}
