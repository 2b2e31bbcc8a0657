package transform

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/resolver"
)

// Transformer rewrites the component functions of one source file. It owns
// an edit list against the original bytes; nothing is written until every
// function has been processed.
type Transformer struct {
	fileSet    *token.FileSet
	src        []byte
	classifier *Classifier
	processor  *DestructureProcessor
	resolver   *resolver.Resolver

	edits      []Edit
	resolved   int
	unresolved int
	// transformed guards against re-entry: a node rewritten in this run is
	// never eligible again.
	transformed map[*ast.FuncType]bool
}

// NewTransformer creates a transformer for one parsed file.
func NewTransformer(fileSet *token.FileSet, src []byte, scope TypeScope, res *resolver.Resolver) *Transformer {
	return &Transformer{
		fileSet:     fileSet,
		src:         src,
		classifier:  NewClassifier(scope),
		processor:   NewDestructureProcessor(fileSet, src),
		resolver:    res,
		transformed: make(map[*ast.FuncType]bool),
	}
}

// NeedsTransformation reports whether a function is eligible. Functions
// already rewritten in this run are never eligible again.
func (t *Transformer) NeedsTransformation(funcType *ast.FuncType) bool {
	if t.transformed[funcType] {
		return false
	}
	return t.classifier.NeedsTransformation(funcType)
}

// TransformFunction rewrites a function declaration in place (as edits).
func (t *Transformer) TransformFunction(fn *ast.FuncDecl, decls []models.DependencyDeclaration) {
	t.transformBody(fn.Type, fn.Body, decls)
}

// TransformArrowFunction rewrites a function literal, the analog of an
// arrow-function component bound to a variable.
func (t *Transformer) TransformArrowFunction(lit *ast.FuncLit, decls []models.DependencyDeclaration) {
	t.transformBody(lit.Type, lit.Body, decls)
}

// Edits returns the accumulated edit list.
func (t *Transformer) Edits() []Edit {
	return t.edits
}

// Counts returns how many dependencies resolved and how many did not.
func (t *Transformer) Counts() (resolved, unresolved int) {
	return t.resolved, t.unresolved
}

// transformBody runs the full per-function pipeline: structural removal of
// the services binding first, then insertion of the generated statement
// block at the top of the body.
func (t *Transformer) transformBody(funcType *ast.FuncType, body *ast.BlockStmt, decls []models.DependencyDeclaration) {
	if body == nil || t.transformed[funcType] || len(decls) == 0 {
		return
	}
	if t.alreadyInjected(body) {
		t.transformed[funcType] = true
		return
	}

	services, ok := t.classifier.LocateServices(funcType)
	if !ok {
		return
	}

	removal := t.processor.RemoveServicesBindings(body, services.ParamName)
	t.edits = append(t.edits, removal.Edits...)

	aggregateName := removal.BoundName
	if aggregateName == "" {
		aggregateName = "services"
	}
	// The services field may belong to a sibling file's type declaration,
	// so the type text is rendered from the AST rather than sliced out of
	// this file's bytes.
	aggregateType := types.ExprString(services.Field.Type)

	block := GenerateDICode(decls, t.resolver, aggregateName, aggregateType)
	t.resolved += block.Resolved
	t.unresolved += block.Unresolved

	lines := block.Lines
	if t.processor.HasRemainingServicesAccess(body, services.ParamName, removal.Consumed) {
		// Go cannot shadow a field-access chain, so direct reads of
		// <param>.Services observe the injected values through an explicit
		// reassignment.
		lines = append(lines, fmt.Sprintf("%s.%s = %s", services.ParamName, servicesFieldName, aggregateName))
	}
	t.edits = append(t.edits, t.insertionEdit(body, lines))

	t.stripInlineMarkers(funcType, services)
	t.transformed[funcType] = true
}

// alreadyInjected reports whether the body already obtains its dependencies
// from the registry. Named services types keep their marker fields across
// runs, so a previously rewritten source scanned again (watch mode,
// repeated in-place runs) would otherwise receive a second resolution
// block redeclaring every local binding.
func (t *Transformer) alreadyInjected(body *ast.BlockStmt) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		var receiver ast.Expr
		switch fun := call.Fun.(type) {
		case *ast.IndexExpr:
			receiver = fun.X
		case *ast.IndexListExpr:
			receiver = fun.X
		default:
			return true
		}
		selector, ok := receiver.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if pkg, ok := selector.X.(*ast.Ident); ok && pkg.Name == markerPackage {
			if selector.Sel.Name == "Resolve" || selector.Sel.Name == "ResolveOptional" {
				found = true
				return false
			}
		}
		return true
	})
	if found {
		return true
	}
	// Unresolved dependencies emit no call, only the trailing marker
	// comment.
	return strings.Contains(sourceText(t.fileSet, t.src, body), "// di:")
}

// insertionEdit builds the edit placing the generated block immediately
// after the body's opening brace, before every original statement.
func (t *Transformer) insertionEdit(body *ast.BlockStmt, lines []string) Edit {
	braceOffset := offsetOf(t.fileSet, body.Lbrace)

	baseIndent := t.lineIndent(braceOffset)
	indent := baseIndent + "\t"

	var b strings.Builder
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(line)
	}
	if len(body.List) == 0 {
		b.WriteString("\n")
		b.WriteString(baseIndent)
	}

	return Edit{Start: braceOffset + 1, End: braceOffset + 1, Replacement: b.String()}
}

// lineIndent returns the leading whitespace of the line containing offset.
func (t *Transformer) lineIndent(offset int) string {
	lineStart := offset
	for lineStart > 0 && t.src[lineStart-1] != '\n' {
		lineStart--
	}
	var b strings.Builder
	for i := lineStart; i < len(t.src); i++ {
		if t.src[i] == ' ' || t.src[i] == '\t' {
			b.WriteByte(t.src[i])
			continue
		}
		break
	}
	return b.String()
}

// stripInlineMarkers unwraps di.Required/di.Optional markers inside an
// inline services struct declared directly in the parameter list, so the
// marker type no longer appears in the transformed function's parameter.
// Named services types are shared declarations and are left alone; the
// transformed set covers those.
func (t *Transformer) stripInlineMarkers(funcType *ast.FuncType, services ServicesField) {
	if funcType.Params == nil || len(funcType.Params.List) != 1 {
		return
	}
	if _, inlineParam := funcType.Params.List[0].Type.(*ast.StructType); !inlineParam {
		return
	}
	if _, inlineServices := services.Field.Type.(*ast.StructType); !inlineServices {
		return
	}

	for _, field := range services.Struct.Fields.List {
		index, ok := field.Type.(*ast.IndexExpr)
		if !ok {
			continue
		}
		kind, _, _ := classifyField(field.Type)
		if kind == models.FieldPlain {
			continue
		}
		t.edits = append(t.edits, Edit{
			Start:       offsetOf(t.fileSet, index.Pos()),
			End:         offsetOf(t.fileSet, index.End()),
			Replacement: sourceText(t.fileSet, t.src, index.Index),
		})
	}
}

// BuildTypeScope collects every named struct type declared across a set of
// parsed files, so classifiers can resolve named parameter types.
func BuildTypeScope(files []*ast.File) TypeScope {
	scope := TypeScope{}
	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			typeSpec, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			if structType, ok := typeSpec.Type.(*ast.StructType); ok {
				scope[typeSpec.Name.Name] = structType
			}
			return true
		})
	}
	return scope
}

// TransformFile parses one source file, rewrites every eligible function
// and returns the result. The second return value is false when the file
// contained no eligible function, in which case the source is untouched
// and byte-identical.
func TransformFile(filename string, src []byte, extraScope TypeScope, res *resolver.Resolver) (*models.TransformationResult, bool, error) {
	fileSet := token.NewFileSet()
	file, err := parser.ParseFile(fileSet, filename, src, parser.ParseComments)
	if err != nil {
		return nil, false, &models.RewriteError{
			Type:    models.ErrorTypeParse,
			File:    filename,
			Message: "failed to parse source file",
			Cause:   err,
		}
	}

	scope := BuildTypeScope([]*ast.File{file})
	for name, structType := range extraScope {
		if _, exists := scope[name]; !exists {
			scope[name] = structType
		}
	}

	transformer := NewTransformer(fileSet, src, scope, res)
	classifier := NewClassifier(scope)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil || d.Body == nil {
				continue
			}
			if !transformer.NeedsTransformation(d.Type) {
				continue
			}
			if _, decls, ok := classifier.ExtractDependencies(d.Type); ok {
				transformer.TransformFunction(d, decls)
			}
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			for _, spec := range d.Specs {
				valueSpec, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, value := range valueSpec.Values {
					lit, ok := value.(*ast.FuncLit)
					if !ok || !transformer.NeedsTransformation(lit.Type) {
						continue
					}
					if _, decls, ok := classifier.ExtractDependencies(lit.Type); ok {
						transformer.TransformArrowFunction(lit, decls)
					}
				}
			}
		}
	}

	edits := transformer.Edits()
	if len(edits) == 0 {
		return nil, false, nil
	}

	resolved, unresolved := transformer.Counts()
	return &models.TransformationResult{
		FilePath:                  filename,
		RewrittenSource:           string(ApplyEdits(src, edits)),
		ResolvedDependencyCount:   resolved,
		UnresolvedDependencyCount: unresolved,
	}, true, nil
}
