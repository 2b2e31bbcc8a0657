package models

// FieldKind classifies a field of a services struct. Classification happens
// exactly once per field; downstream logic switches on this closed set
// instead of re-inspecting type expressions.
type FieldKind int

const (
	FieldPlain FieldKind = iota
	FieldRequired
	FieldOptional
)

// String returns the string representation of the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldPlain:
		return "plain"
	case FieldRequired:
		return "required"
	case FieldOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// DependencyDeclaration describes one dependency field declared inside the
// Services struct of a component function's parameter. Declarations are
// extracted fresh per function and never mutated afterwards.
type DependencyDeclaration struct {
	PropertyName          string // field name inside the services struct
	AbstractTypeSignature string // normalized declared interface type
	IsOptional            bool   // optional marker vs required marker
	IsGeneric             bool   // signature carries type arguments
}

// ResolvedBinding maps an abstract type signature to a concrete
// implementation. One binding exists per distinct signature across the
// whole project; declarations sharing a signature share the binding.
type ResolvedBinding struct {
	AbstractTypeSignature      string
	SanitizedKey               string
	ConcreteImplementationName string
}

// Implementation describes a //di::service annotated struct discovered by
// the project scan.
type Implementation struct {
	Name       string   // struct name (or -Name override)
	StructName string   // annotated struct name
	Implements []string // abstract signatures the struct satisfies
	FileName   string
	Line       int
	// Requires lists the abstract signatures of the struct's own
	// dependency fields, used for circular-dependency detection.
	Requires []string
}
