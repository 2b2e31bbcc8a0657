package transform

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// DestructureProcessor removes bindings of the parameter's Services field
// from assignment and var statements while leaving every sibling binding,
// surrounding statement, comment and piece of formatting intact.
type DestructureProcessor struct {
	fileSet *token.FileSet
	src     []byte
}

// NewDestructureProcessor creates a processor for one parsed file.
func NewDestructureProcessor(fileSet *token.FileSet, src []byte) *DestructureProcessor {
	return &DestructureProcessor{fileSet: fileSet, src: src}
}

// RemovalResult describes what RemoveServicesBindings did.
type RemovalResult struct {
	Edits []Edit
	// BoundName is the local name the services value was bound to, empty
	// when the parameter was never destructured.
	BoundName string
	// Consumed holds the services selector expressions that were removed,
	// so later scans for remaining member-chain access can skip them.
	Consumed map[ast.Expr]bool
}

// RemoveServicesBindings finds every statement binding
// <paramName>.Services to a local and produces edits deleting exactly that
// binding. Sibling bindings in multi-assignments keep their original
// relative order.
func (p *DestructureProcessor) RemoveServicesBindings(body *ast.BlockStmt, paramName string) RemovalResult {
	result := RemovalResult{Consumed: make(map[ast.Expr]bool)}

	astutil.Apply(body, func(cursor *astutil.Cursor) bool {
		switch stmt := cursor.Node().(type) {
		case *ast.AssignStmt:
			p.processAssign(stmt, paramName, &result)
		case *ast.DeclStmt:
			if genDecl, ok := stmt.Decl.(*ast.GenDecl); ok && genDecl.Tok == token.VAR {
				p.processVarDecl(stmt, genDecl, paramName, &result)
			}
		}
		return true
	}, nil)

	return result
}

// processAssign handles `svcs := props.Services` and multi-assignments
// like `msg, svcs := props.Message, props.Services`.
func (p *DestructureProcessor) processAssign(stmt *ast.AssignStmt, paramName string, result *RemovalResult) {
	if len(stmt.Lhs) != len(stmt.Rhs) {
		return
	}

	var keep []int
	for i, rhs := range stmt.Rhs {
		if isServicesSelector(rhs, paramName) {
			result.Consumed[rhs] = true
			if result.BoundName == "" {
				if ident, ok := stmt.Lhs[i].(*ast.Ident); ok {
					result.BoundName = ident.Name
				}
			}
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(stmt.Lhs) {
		return
	}

	if len(keep) == 0 {
		result.Edits = append(result.Edits, p.statementRemoval(stmt))
		return
	}

	// Rebuild the assignment with the surviving pairs, reusing the exact
	// source text of every expression.
	lhs := make([]string, 0, len(keep))
	rhs := make([]string, 0, len(keep))
	for _, i := range keep {
		lhs = append(lhs, p.nodeText(stmt.Lhs[i]))
		rhs = append(rhs, p.nodeText(stmt.Rhs[i]))
	}
	replacement := strings.Join(lhs, ", ") + " " + stmt.Tok.String() + " " + strings.Join(rhs, ", ")
	result.Edits = append(result.Edits, Edit{
		Start:       p.offset(stmt.Pos()),
		End:         p.offset(stmt.End()),
		Replacement: replacement,
	})
}

// processVarDecl handles `var svcs = props.Services` forms.
func (p *DestructureProcessor) processVarDecl(stmt *ast.DeclStmt, genDecl *ast.GenDecl, paramName string, result *RemovalResult) {
	if len(genDecl.Specs) != 1 {
		return
	}
	spec, ok := genDecl.Specs[0].(*ast.ValueSpec)
	if !ok || len(spec.Names) != len(spec.Values) {
		return
	}

	var keep []int
	for i, value := range spec.Values {
		if isServicesSelector(value, paramName) {
			result.Consumed[value] = true
			if result.BoundName == "" {
				result.BoundName = spec.Names[i].Name
			}
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(spec.Names) {
		return
	}

	if len(keep) == 0 {
		result.Edits = append(result.Edits, p.statementRemoval(stmt))
		return
	}

	names := make([]string, 0, len(keep))
	values := make([]string, 0, len(keep))
	for _, i := range keep {
		names = append(names, spec.Names[i].Name)
		values = append(values, p.nodeText(spec.Values[i]))
	}
	replacement := "var " + strings.Join(names, ", ")
	if spec.Type != nil {
		replacement += " " + p.nodeText(spec.Type)
	}
	replacement += " = " + strings.Join(values, ", ")
	result.Edits = append(result.Edits, Edit{
		Start:       p.offset(stmt.Pos()),
		End:         p.offset(stmt.End()),
		Replacement: replacement,
	})
}

// statementRemoval deletes a whole statement, taking its line with it when
// the statement is alone on the line.
func (p *DestructureProcessor) statementRemoval(stmt ast.Stmt) Edit {
	start := p.offset(stmt.Pos())
	end := p.offset(stmt.End())

	lineStart := start
	for lineStart > 0 && p.src[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := end
	for lineEnd < len(p.src) && p.src[lineEnd] != '\n' {
		lineEnd++
	}
	if lineEnd < len(p.src) {
		lineEnd++
	}

	prefix := string(p.src[lineStart:start])
	suffix := string(p.src[end:min(lineEnd, len(p.src))])
	if strings.TrimSpace(prefix) == "" && strings.TrimSpace(suffix) == "" {
		return Edit{Start: lineStart, End: lineEnd}
	}
	return Edit{Start: start, End: end}
}

// HasRemainingServicesAccess reports whether the body still reads the
// parameter's Services field through a member chain after the removed
// bindings are discounted.
func (p *DestructureProcessor) HasRemainingServicesAccess(body *ast.BlockStmt, paramName string, consumed map[ast.Expr]bool) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		if expr, ok := n.(ast.Expr); ok && consumed[expr] {
			return false
		}
		if isServicesSelector(n, paramName) {
			found = true
			return false
		}
		return true
	})
	return found
}

// isServicesSelector matches the expression `<paramName>.Services`.
func isServicesSelector(n ast.Node, paramName string) bool {
	selector, ok := n.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := selector.X.(*ast.Ident)
	return ok && ident.Name == paramName && selector.Sel.Name == servicesFieldName
}

// nodeText slices the original source for a node.
func (p *DestructureProcessor) nodeText(n ast.Node) string {
	return sourceText(p.fileSet, p.src, n)
}

// offset converts a token position to a byte offset into the file.
func (p *DestructureProcessor) offset(pos token.Pos) int {
	return offsetOf(p.fileSet, pos)
}
