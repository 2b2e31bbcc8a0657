package cli

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/renderwire/renderwire/internal/configcache"
	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/resolver"
	"github.com/renderwire/renderwire/internal/transform"
	"github.com/renderwire/renderwire/internal/utils"
)

// Pipeline coordinates one full transformation run: resolver scan, per-file
// eligibility and rewrite, then artifact persistence under the
// configuration identity. Each invocation owns its resolver and cache
// manager; nothing is shared between runs.
type Pipeline struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
	fileReader  *utils.FileReader
	scanner     *DirectoryScanner

	summary    models.Summary
	validation models.ValidationResult
}

// NewPipeline creates a pipeline for one driver invocation.
func NewPipeline(config Config, diagnostics *utils.DiagnosticSystem) *Pipeline {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Pipeline{
		config:      config.withDefaults(),
		diagnostics: diagnostics,
		logger:      newLogger(config.Verbose),
		fileReader:  utils.NewFileReader(),
		scanner:     NewDirectoryScanner(),
	}
}

// TransformForBuild runs the full pipeline and returns the rewritten
// sources keyed by original file path. Files without eligible functions
// are not in the map. Only a failure to read the source tree at all is
// returned as an error; everything else degrades to summary entries.
func (p *Pipeline) TransformForBuild() (map[string]string, error) {
	cfg := p.config
	p.summary = models.Summary{}

	if !cfg.EnableFunctionalDI {
		p.diagnostics.Info("Functional DI disabled, nothing to transform")
		return map[string]string{}, nil
	}

	identity := configcache.ComputeIdentity(p.identityInputs())
	p.summary.ConfigHash = identity.Hash
	p.logger.Info("computed configuration identity",
		zap.String("hash", identity.Hash),
		zap.String("source", identity.SourceDir),
		zap.String("environment", identity.Environment))

	manager := configcache.NewManager(cfg.OutputDir)
	if set, ok := manager.FindReusable(identity.Hash); ok {
		p.diagnostics.Progress("Reusing %d artifacts for configuration %s", len(set.Files), identity.Hash)
		p.logger.Info("reused persisted artifacts", zap.Int("count", len(set.Files)))
		p.summary.ReusedFromCache = true
		p.fillSummaryFromArtifacts(set.Files)
		return set.Files, nil
	}

	results, err := p.regenerate(identity)
	if err != nil {
		return nil, err
	}

	if err := manager.Persist(identity.Hash, results, p.identityInputs()); err != nil {
		// Persistence failure degrades to a warning; the in-memory result
		// is still complete and correct.
		p.diagnostics.Warn("Failed to persist artifacts: %v", err)
		p.logger.Warn("artifact persistence failed", zap.Error(err))
	} else if err := manager.Clean(cfg.ConfigRetention, identity.Hash); err != nil {
		p.diagnostics.Warn("Failed to clean stale artifact sets: %v", err)
	}

	return results, nil
}

// regenerate performs the full scan-and-rewrite pass.
func (p *Pipeline) regenerate(identity configcache.Identity) (map[string]string, error) {
	cfg := p.config

	res := resolver.New(cfg.SourceDir)
	if cfg.EnableInterfaceResolution {
		if err := res.ScanProject(); err != nil {
			return nil, err
		}
		p.diagnostics.Progress("Discovered implementations for %d abstract types", res.Implementations())
		p.logger.Info("resolver scan complete", zap.Int("signatures", res.Implementations()))
	} else {
		p.diagnostics.Warn("Interface resolution disabled, all dependencies will be unresolved")
	}

	files, err := p.scanner.ScanGoFiles(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	p.logger.Debug("enumerated source files", zap.Int("count", len(files)))

	debug := NewDebugWriter(cfg.OutputDir, cfg.GenerateDebugFiles)
	defer debug.Flush()

	scopes := make(map[string]transform.TypeScope)
	results := make(map[string]string)

	p.diagnostics.Indent()
	for _, file := range files {
		source, err := p.fileReader.ReadFile(file)
		if err != nil {
			p.skip(file, fmt.Sprintf("unreadable: %v", err))
			continue
		}

		scope, err := p.directoryScope(filepath.Dir(file), scopes)
		if err != nil {
			p.skip(file, fmt.Sprintf("package scope unavailable: %v", err))
			continue
		}

		result, transformed, err := transform.TransformFile(file, []byte(source), scope, res)
		if err != nil {
			// Parse failures skip the file and the run continues.
			p.skip(file, err.Error())
			debug.Logf("skip %s: %v", file, err)
			continue
		}
		if !transformed {
			continue
		}

		results[file] = result.RewrittenSource
		p.summary.Count++
		p.summary.TransformedFiles = append(p.summary.TransformedFiles, file)
		p.summary.ResolvedDependencies += result.ResolvedDependencyCount
		p.summary.UnresolvedDependencies += result.UnresolvedDependencyCount

		debug.WriteSnapshot(file, source, result.RewrittenSource)
		debug.Logf("transformed %s: %d resolved, %d unresolved",
			file, result.ResolvedDependencyCount, result.UnresolvedDependencyCount)
		p.diagnostics.Verbose("Transformed %s (%d resolved, %d unresolved)",
			file, result.ResolvedDependencyCount, result.UnresolvedDependencyCount)
		p.logger.Debug("transformed file",
			zap.String("file", file),
			zap.Int("resolved", result.ResolvedDependencyCount),
			zap.Int("unresolved", result.UnresolvedDependencyCount))
	}
	p.diagnostics.Unindent()

	p.validation = res.ValidateDependencies()
	p.reportValidation()

	p.diagnostics.Progress("Transformed %d files under configuration %s", p.summary.Count, identity.Hash)
	return results, nil
}

// GetTransformationSummary returns the summary of the last run.
func (p *Pipeline) GetTransformationSummary() models.Summary {
	return p.summary
}

// ValidationReport returns the resolver's advisory validation result for
// the last run.
func (p *Pipeline) ValidationReport() models.ValidationResult {
	return p.validation
}

// identityInputs builds the normalized identity inputs. Watch and Verbose
// are run modes, not feature flags: they do not change generated output,
// so they stay out of the identity.
func (p *Pipeline) identityInputs() configcache.Inputs {
	return configcache.Inputs{
		SourceDir: p.config.SourceDir,
		FeatureFlags: map[string]bool{
			"functional_di":        p.config.EnableFunctionalDI,
			"interface_resolution": p.config.EnableInterfaceResolution,
			"debug_files":          p.config.GenerateDebugFiles,
		},
		PackageName: p.packageName(),
		Environment: p.config.Environment,
		Suffix:      p.config.ConfigSuffix,
	}
}

// packageName resolves the module path from go.mod unless overridden.
func (p *Pipeline) packageName() string {
	if p.config.PackageName != "" {
		return p.config.PackageName
	}
	gomod := utils.NewGoModParser(p.fileReader)
	path, err := gomod.FindGoModFile(p.config.SourceDir)
	if err != nil {
		p.logger.Debug("no go.mod found", zap.String("source", p.config.SourceDir))
		return ""
	}
	name, err := gomod.ParseModuleName(path)
	if err != nil {
		p.diagnostics.Warn("Failed to parse %s: %v", path, err)
		return ""
	}
	return name
}

// directoryScope parses every Go file of a directory once and caches the
// named struct types visible to files in it.
func (p *Pipeline) directoryScope(dir string, scopes map[string]transform.TypeScope) (transform.TypeScope, error) {
	if scope, ok := scopes[dir]; ok {
		return scope, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fileSet := token.NewFileSet()
	var parsed []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fileSet, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			// A broken sibling file only reduces the scope; the current
			// file may still transform on its own declarations.
			continue
		}
		parsed = append(parsed, file)
	}

	scope := transform.BuildTypeScope(parsed)
	scopes[dir] = scope
	p.diagnostics.Debug("Built type scope for %s from %d files (%d named structs)", dir, len(parsed), len(scope))
	return scope, nil
}

// skip records a skipped file in the summary.
func (p *Pipeline) skip(file, reason string) {
	p.summary.SkippedFiles = append(p.summary.SkippedFiles, models.SkippedFile{FilePath: file, Reason: reason})
	p.diagnostics.Warn("Skipping %s: %s", file, reason)
}

// fillSummaryFromArtifacts reconstructs summary counters for a reused set.
func (p *Pipeline) fillSummaryFromArtifacts(files map[string]string) {
	p.summary.Count = len(files)
	for file := range files {
		p.summary.TransformedFiles = append(p.summary.TransformedFiles, file)
	}
	sort.Strings(p.summary.TransformedFiles)
}

// reportValidation surfaces the advisory validation result as warnings.
func (p *Pipeline) reportValidation() {
	for _, missing := range p.validation.MissingImplementations {
		p.diagnostics.Warn("No implementation found for required dependency %s", missing)
	}
	for _, ambiguous := range p.validation.AmbiguousImplementations {
		p.diagnostics.Warn("Multiple implementations for %s: using %s (also found: %s)",
			ambiguous.AbstractTypeSignature, ambiguous.Winner, strings.Join(ambiguous.Competitors, ", "))
	}
	for _, cycle := range p.validation.CircularDependencies {
		p.diagnostics.Warn("Circular implementation dependency: %s", strings.Join(cycle, " -> "))
	}
}

// newLogger builds the structured logger backing verbose mode.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
