package transform

import (
	"fmt"
	"strings"

	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/resolver"
)

// GeneratedBlock is the ordered statement block inserted at the top of a
// transformed function body.
type GeneratedBlock struct {
	Lines      []string
	Resolved   int
	Unresolved int
}

// GenerateDICode emits one resolution statement per dependency declaration
// followed by the reconstructed services aggregate. Local bindings always
// precede the aggregate that references them; aggregate fields keep the
// declared property order.
func GenerateDICode(decls []models.DependencyDeclaration, res *resolver.Resolver, aggregateName, aggregateType string) GeneratedBlock {
	block := GeneratedBlock{}

	locals := make([]string, len(decls))
	for i, decl := range decls {
		local := localName(decl.PropertyName)
		locals[i] = local

		var binding *models.ResolvedBinding
		var found bool
		if decl.IsOptional {
			binding, found = res.ResolveOptionalImplementation(decl.AbstractTypeSignature)
		} else {
			binding, found = res.ResolveImplementation(decl.AbstractTypeSignature)
		}
		switch {
		case !decl.IsOptional && found:
			block.Resolved++
			block.Lines = append(block.Lines, fmt.Sprintf("%s := di.Resolve[%s](%q)",
				local, decl.AbstractTypeSignature, binding.SanitizedKey))
		case !decl.IsOptional && !found:
			// The call still parses and compiles; the marker comment is
			// there for developers to grep for.
			block.Unresolved++
			block.Lines = append(block.Lines, fmt.Sprintf("%s := di.Resolve[%s](%q) // di: no implementation found for %s",
				local, decl.AbstractTypeSignature, resolver.Sanitize(decl.AbstractTypeSignature), decl.AbstractTypeSignature))
		case decl.IsOptional && found:
			block.Resolved++
			block.Lines = append(block.Lines, fmt.Sprintf("%s := di.ResolveOptional[%s](%q)",
				local, decl.AbstractTypeSignature, binding.SanitizedKey))
		default:
			// No binding exists, so there is nothing to attempt at runtime.
			block.Unresolved++
			block.Lines = append(block.Lines, fmt.Sprintf("var %s %s // di: optional dependency not registered",
				local, decl.AbstractTypeSignature))
		}
	}

	fields := make([]string, len(decls))
	for i, decl := range decls {
		fields[i] = fmt.Sprintf("%s: %s", decl.PropertyName, locals[i])
	}
	block.Lines = append(block.Lines, fmt.Sprintf("%s := %s{%s}",
		aggregateName, aggregateType, strings.Join(fields, ", ")))

	return block
}

// localName derives the local binding name for a declared property.
// Exported property names are lowered; all-caps initialisms become fully
// lowercase so API turns into api rather than aPI.
func localName(property string) string {
	if property == "" {
		return "_"
	}
	if property == strings.ToUpper(property) {
		return strings.ToLower(property)
	}
	return strings.ToLower(property[:1]) + property[1:]
}
