package cli

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/renderwire/renderwire/internal/devserver"
	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/utils"
)

// DefaultDebugAddr is where the watch-mode debug server listens.
const DefaultDebugAddr = "127.0.0.1:7431"

// Watcher re-runs the pipeline whenever Go sources under the configured
// root change. Each change triggers a fresh pipeline invocation so runs
// stay independent of each other.
type Watcher struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
	interval    time.Duration

	mu      sync.RWMutex
	summary models.Summary
}

// NewWatcher creates a watcher polling at the given interval. A zero
// interval defaults to one second.
func NewWatcher(config Config, diagnostics *utils.DiagnosticSystem, interval time.Duration) *Watcher {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		config:      config.withDefaults(),
		diagnostics: diagnostics,
		logger:      newLogger(config.Verbose),
		interval:    interval,
	}
}

// Summary returns the summary of the most recent completed run.
func (w *Watcher) Summary() models.Summary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.summary
}

// Run watches until the context is cancelled. It performs an initial run
// immediately, starts the debug server, and then re-runs on every
// detected source change. The debug server is diagnostic only: losing it
// (a second watch driver already bound the address, say) never stops the
// watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.runOnce()

	serverErr := make(chan error, 1)
	server := devserver.New(w.Summary, w.logger)
	go func() {
		serverErr <- server.Start(ctx, w.config.DebugAddr)
	}()
	w.diagnostics.Info("Watching %s (debug server on %s)", w.config.SourceDir, w.config.DebugAddr)

	previous, err := w.snapshot()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if serverErr != nil {
				<-serverErr
			}
			return nil
		case err := <-serverErr:
			if err != nil && ctx.Err() == nil {
				w.diagnostics.Warn("Debug server unavailable: %v", err)
				w.logger.Warn("debug server failed", zap.Error(err))
			}
			serverErr = nil
		case <-ticker.C:
			current, err := w.snapshot()
			if err != nil {
				w.diagnostics.Warn("Source scan failed: %v", err)
				continue
			}
			if changed(previous, current) {
				w.diagnostics.Info("Change detected, re-running transformation")
				w.runOnce()
				previous = current
			}
		}
	}
}

// runOnce executes one independent pipeline run and records its summary.
func (w *Watcher) runOnce() {
	pipeline := NewPipeline(w.config, w.diagnostics)
	if _, err := pipeline.TransformForBuild(); err != nil {
		w.diagnostics.Error("Transformation failed: %v", err)
		w.logger.Error("watch run failed", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.summary = pipeline.GetTransformationSummary()
	w.mu.Unlock()
}

// snapshot maps each non-test Go file to its modification time.
func (w *Watcher) snapshot() (map[string]time.Time, error) {
	times := make(map[string]time.Time)
	root := strings.TrimSuffix(w.config.SourceDir, "/...")
	if root == "" {
		root = "."
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		times[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return times, nil
}

func changed(previous, current map[string]time.Time) bool {
	if len(previous) != len(current) {
		return true
	}
	for path, mtime := range current {
		if old, ok := previous[path]; !ok || !old.Equal(mtime) {
			return true
		}
	}
	return false
}
