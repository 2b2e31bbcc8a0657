package resolver

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/renderwire/renderwire/internal/annotations"
	"github.com/renderwire/renderwire/internal/models"
)

// Resolver builds the project-wide mapping from abstract type signatures to
// concrete implementations. One resolver instance is owned by one pipeline
// run and rebuilt from scratch on every invocation; nothing is shared
// between runs.
type Resolver struct {
	fileSet    *token.FileSet
	directives *annotations.Parser
	sourceRoot string

	// implementations holds every registration per normalized signature,
	// sorted by (file, line) for the deterministic tie-break.
	implementations map[string][]models.Implementation
	bindings        map[string]*models.ResolvedBinding
	// display maps normalized signatures back to their first-seen spelling
	// for reporting.
	display map[string]string
	// referenced tracks every signature asked about during the run,
	// missing the subset that had no registration.
	referenced map[string]bool
	missing    map[string]bool
	scanned    bool
}

// New creates a resolver rooted at the given source directory.
func New(sourceRoot string) *Resolver {
	return &Resolver{
		fileSet:         token.NewFileSet(),
		directives:      annotations.NewParser(),
		sourceRoot:      sourceRoot,
		implementations: make(map[string][]models.Implementation),
		bindings:        make(map[string]*models.ResolvedBinding),
		display:         make(map[string]string),
		referenced:      make(map[string]bool),
		missing:         make(map[string]bool),
	}
}

// ScanProject walks the source root once and collects every //di::service
// registration. Files that fail to parse are skipped; scanning never
// mutates source files.
func (r *Resolver) ScanProject() error {
	err := filepath.WalkDir(r.sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != r.sourceRoot && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, parseErr := parser.ParseFile(r.fileSet, path, nil, parser.ParseComments)
		if parseErr != nil {
			// Unparseable files are skipped here and reported by the
			// pipeline's own pass over the same tree.
			return nil
		}
		r.collectFromFile(file, path)
		return nil
	})
	if err != nil {
		return &models.RewriteError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("failed to scan project at %s", r.sourceRoot),
			Cause:   err,
		}
	}

	r.buildBindings()
	r.scanned = true
	return nil
}

// ScanSource registers implementations from in-memory source, used by
// tests and by callers that already hold parsed content.
func (r *Resolver) ScanSource(filename, source string) error {
	file, err := parser.ParseFile(r.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse source %s: %w", filename, err)
	}
	r.collectFromFile(file, filename)
	r.buildBindings()
	r.scanned = true
	return nil
}

// ResolveImplementation returns the binding for a required abstract type
// signature. Lookups are pure; every required miss is recorded for
// ValidateDependencies.
func (r *Resolver) ResolveImplementation(signature string) (*models.ResolvedBinding, bool) {
	binding, ok, normalized := r.lookup(signature)
	if !ok {
		r.missing[normalized] = true
		return nil, false
	}
	return binding, true
}

// ResolveOptionalImplementation returns the binding for an optional
// dependency. Optional misses are expected and stay out of the
// missing-implementation report.
func (r *Resolver) ResolveOptionalImplementation(signature string) (*models.ResolvedBinding, bool) {
	binding, ok, _ := r.lookup(signature)
	if !ok {
		return nil, false
	}
	return binding, true
}

func (r *Resolver) lookup(signature string) (*models.ResolvedBinding, bool, string) {
	normalized := NormalizeSignature(signature)
	r.referenced[normalized] = true
	if _, seen := r.display[normalized]; !seen {
		r.display[normalized] = strings.TrimSpace(signature)
	}
	binding, ok := r.bindings[normalized]
	return binding, ok, normalized
}

// ValidateDependencies reports missing implementations, ambiguous
// registrations and circular implementation dependencies. It never returns
// an error and never blocks transformation; the result is advisory.
func (r *Resolver) ValidateDependencies() models.ValidationResult {
	result := models.ValidationResult{}

	for normalized := range r.missing {
		result.MissingImplementations = append(result.MissingImplementations, r.displayName(normalized))
	}
	sort.Strings(result.MissingImplementations)

	for normalized, impls := range r.implementations {
		if len(impls) < 2 {
			continue
		}
		ambiguous := models.AmbiguousImplementation{
			AbstractTypeSignature: r.displayName(normalized),
			Winner:                impls[0].Name,
		}
		for _, impl := range impls[1:] {
			ambiguous.Competitors = append(ambiguous.Competitors, impl.Name)
		}
		result.AmbiguousImplementations = append(result.AmbiguousImplementations, ambiguous)
	}
	sort.Slice(result.AmbiguousImplementations, func(i, j int) bool {
		return result.AmbiguousImplementations[i].AbstractTypeSignature < result.AmbiguousImplementations[j].AbstractTypeSignature
	})

	result.CircularDependencies = r.findCycles()
	result.IsValid = len(result.MissingImplementations) == 0 &&
		len(result.AmbiguousImplementations) == 0 &&
		len(result.CircularDependencies) == 0
	return result
}

// Implementations returns the number of distinct abstract signatures with
// at least one registration.
func (r *Resolver) Implementations() int {
	return len(r.implementations)
}

// displayName returns the first-seen spelling of a normalized signature,
// falling back to the normalized form itself.
func (r *Resolver) displayName(normalized string) string {
	if display, ok := r.display[normalized]; ok && display != "" {
		return display
	}
	return normalized
}

// collectFromFile extracts //di::service directives attached to struct
// declarations.
func (r *Resolver) collectFromFile(file *ast.File, fileName string) {
	ast.Inspect(file, func(n ast.Node) bool {
		genDecl, ok := n.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE || genDecl.Doc == nil {
			return true
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, comment := range genDecl.Doc.List {
				if !annotations.IsDirective(comment.Text) {
					continue
				}
				position := r.fileSet.Position(comment.Pos())
				directive, err := r.directives.ParseDirective(comment.Text, annotations.SourceLocation{
					File:   fileName,
					Line:   position.Line,
					Column: position.Column,
				})
				if err != nil || directive.Type != annotations.ServiceDirective {
					continue
				}
				r.registerImplementation(directive, typeSpec.Name.Name, structType, fileName, position.Line)
			}
		}
		return true
	})
}

// registerImplementation records one service registration together with the
// abstract signatures of its own dependency fields.
func (r *Resolver) registerImplementation(directive *annotations.ParsedDirective, structName string, structType *ast.StructType, fileName string, line int) {
	name := directive.GetString("Name", structName)

	impl := models.Implementation{
		Name:       name,
		StructName: structName,
		FileName:   fileName,
		Line:       line,
	}

	for _, field := range structType.Fields.List {
		impl.Requires = append(impl.Requires, NormalizeSignature(types.ExprString(field.Type)))
	}

	for _, signature := range directive.GetStringSlice("Implements") {
		normalized := NormalizeSignature(signature)
		if _, seen := r.display[normalized]; !seen {
			r.display[normalized] = signature
		}
		impl.Implements = append(impl.Implements, normalized)
		r.implementations[normalized] = append(r.implementations[normalized], impl)
	}
}

// buildBindings sorts competing registrations and materializes one binding
// per signature. The lexicographically first registration (file path, then
// line) wins so independent runs always converge on the same choice.
func (r *Resolver) buildBindings() {
	for normalized, impls := range r.implementations {
		sort.Slice(impls, func(i, j int) bool {
			if impls[i].FileName != impls[j].FileName {
				return impls[i].FileName < impls[j].FileName
			}
			return impls[i].Line < impls[j].Line
		})
		r.implementations[normalized] = impls

		r.bindings[normalized] = &models.ResolvedBinding{
			AbstractTypeSignature:      r.display[normalized],
			SanitizedKey:               Sanitize(normalized),
			ConcreteImplementationName: impls[0].Name,
		}
	}
}

// findCycles detects circular implementation dependencies over the
// signature graph: an edge runs from every signature an implementation
// satisfies to every signature its struct fields require.
func (r *Resolver) findCycles() [][]string {
	edges := make(map[string][]string)
	for signature, impls := range r.implementations {
		winner := impls[0]
		for _, required := range winner.Requires {
			if _, known := r.implementations[required]; known || r.referenced[required] {
				edges[signature] = append(edges[signature], required)
			}
		}
		sort.Strings(edges[signature])
	}

	nodes := make([]string, 0, len(edges))
	for node := range edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var cycles [][]string
	seenCycle := make(map[string]bool)

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)
	var stack []string

	var visit func(node string)
	visit = func(node string) {
		state[node] = inStack
		stack = append(stack, node)

		for _, next := range edges[node] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				// Extract the cycle slice from the stack.
				start := 0
				for i, name := range stack {
					if name == next {
						start = i
						break
					}
				}
				cycle := make([]string, 0, len(stack)-start)
				for _, name := range stack[start:] {
					cycle = append(cycle, r.displayName(name))
				}
				key := strings.Join(cycle, "->")
				if !seenCycle[key] {
					seenCycle[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
	}

	for _, node := range nodes {
		if state[node] == unvisited {
			visit(node)
		}
	}

	return cycles
}
