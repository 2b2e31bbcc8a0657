package transform

import (
	"go/ast"
	"go/types"

	"github.com/renderwire/renderwire/internal/models"
)

// markerPackage is the package name the Required/Optional marker aliases
// are imported under in component source.
const markerPackage = "di"

// servicesFieldName is the parameter field holding the dependency
// declarations. Matching is exact on the exported spelling.
const servicesFieldName = "Services"

// Classifier decides whether a function's parameter shape declares
// transformable dependencies. The gate is strict: anything that does not
// match exactly is left untouched, since a partial rewrite risks mismatched
// bindings.
type Classifier struct {
	scope TypeScope
}

// TypeScope resolves named struct types visible to the file being
// classified (same file plus the rest of its package directory).
type TypeScope map[string]*ast.StructType

// NewClassifier creates a classifier over the given type scope.
func NewClassifier(scope TypeScope) *Classifier {
	if scope == nil {
		scope = TypeScope{}
	}
	return &Classifier{scope: scope}
}

// NeedsTransformation reports whether the function type declares a
// services field with at least one dependency marker.
func (c *Classifier) NeedsTransformation(funcType *ast.FuncType) bool {
	_, decls, ok := c.ExtractDependencies(funcType)
	return ok && len(decls) > 0
}

// ExtractDependencies returns the parameter name, the services field info
// and one DependencyDeclaration per marker-annotated field, in declared
// order. ok is false whenever the function is not eligible.
func (c *Classifier) ExtractDependencies(funcType *ast.FuncType) (string, []models.DependencyDeclaration, bool) {
	services, ok := c.locateServices(funcType)
	if !ok {
		return "", nil, false
	}

	var decls []models.DependencyDeclaration
	hasMarker := false
	for _, field := range services.Struct.Fields.List {
		kind, signature, generic := classifyField(field.Type)
		if kind == models.FieldPlain {
			continue
		}
		hasMarker = true
		for _, name := range field.Names {
			decls = append(decls, models.DependencyDeclaration{
				PropertyName:          name.Name,
				AbstractTypeSignature: signature,
				IsOptional:            kind == models.FieldOptional,
				IsGeneric:             generic,
			})
		}
	}

	// A services struct with no markers (including the empty struct) is
	// treated as absent.
	if !hasMarker {
		return "", nil, false
	}
	return services.ParamName, decls, true
}

// servicesInfo carries everything the transformer needs about the located
// services field.
type servicesInfo struct {
	ParamName string
	Field     *ast.Field      // the Services field of the parameter struct
	Struct    *ast.StructType // the services struct itself
}

// LocateServices exposes the located services field for the transformer.
func (c *Classifier) LocateServices(funcType *ast.FuncType) (ServicesField, bool) {
	info, ok := c.locateServices(funcType)
	if !ok {
		return ServicesField{}, false
	}
	return ServicesField{ParamName: info.ParamName, Field: info.Field, Struct: info.Struct}, true
}

// ServicesField is the public view of a located services declaration.
type ServicesField struct {
	ParamName string
	Field     *ast.Field
	Struct    *ast.StructType
}

func (c *Classifier) locateServices(funcType *ast.FuncType) (servicesInfo, bool) {
	if funcType.Params == nil || len(funcType.Params.List) != 1 {
		return servicesInfo{}, false
	}
	param := funcType.Params.List[0]
	// Grouped parameters (`a, b Props`) and unnamed parameters cannot be
	// rewritten against a single identifier.
	if len(param.Names) != 1 {
		return servicesInfo{}, false
	}

	paramStruct, ok := c.resolveStruct(param.Type)
	if !ok {
		return servicesInfo{}, false
	}

	for _, field := range paramStruct.Fields.List {
		for _, name := range field.Names {
			if name.Name != servicesFieldName {
				continue
			}
			servicesStruct, ok := c.resolveStruct(field.Type)
			if !ok {
				return servicesInfo{}, false
			}
			return servicesInfo{
				ParamName: param.Names[0].Name,
				Field:     field,
				Struct:    servicesStruct,
			}, true
		}
	}
	return servicesInfo{}, false
}

// resolveStruct resolves an inline struct literal or a named type reference
// to its struct definition.
func (c *Classifier) resolveStruct(expr ast.Expr) (*ast.StructType, bool) {
	switch t := expr.(type) {
	case *ast.StructType:
		return t, true
	case *ast.Ident:
		s, ok := c.scope[t.Name]
		return s, ok
	}
	return nil, false
}

// classifyField classifies one services field into the closed
// Required/Optional/Plain variant set. Classification happens here and
// nowhere else; downstream logic switches on the result.
func classifyField(expr ast.Expr) (models.FieldKind, string, bool) {
	index, ok := expr.(*ast.IndexExpr)
	if !ok {
		return models.FieldPlain, "", false
	}
	selector, ok := index.X.(*ast.SelectorExpr)
	if !ok {
		return models.FieldPlain, "", false
	}
	pkg, ok := selector.X.(*ast.Ident)
	if !ok || pkg.Name != markerPackage {
		return models.FieldPlain, "", false
	}

	var kind models.FieldKind
	switch selector.Sel.Name {
	case "Required":
		kind = models.FieldRequired
	case "Optional":
		kind = models.FieldOptional
	default:
		return models.FieldPlain, "", false
	}

	signature := types.ExprString(index.Index)
	generic := isGenericExpr(index.Index)
	return kind, signature, generic
}

// isGenericExpr reports whether a type expression carries type arguments.
func isGenericExpr(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.IndexExpr:
		return true
	case *ast.IndexListExpr:
		return true
	case *ast.StarExpr:
		return isGenericExpr(t.X)
	}
	return false
}
