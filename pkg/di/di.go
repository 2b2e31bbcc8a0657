// Package di is the runtime boundary for code generated by renderwire.
//
// Component code declares dependencies through the Required and Optional
// marker aliases; the rewriter replaces those declarations with Resolve and
// ResolveOptional calls against the registry. The markers are generic type
// aliases, so annotated code type-checks identically before and after the
// rewrite.
package di

// Required marks a services field as a dependency the component cannot
// function without. At the type level it is the wrapped type itself.
type Required[T any] = T

// Optional marks a services field as a dependency the component degrades
// gracefully without.
type Optional[T any] = T

// defaultContainer backs the package-level registry the generated
// resolution calls target.
var defaultContainer = NewContainer()

// Default returns the package-level container.
func Default() *Container {
	return defaultContainer
}

// Register stores a value in the package-level container under key.
func Register(key string, value any) {
	defaultContainer.Register(key, value)
}

// Reset replaces the package-level container with an empty one. Intended
// for tests.
func Reset() {
	defaultContainer = NewContainer()
}

// Resolve returns the implementation registered under key in the
// package-level container, panicking when no registration exists.
// Generated code uses it for required dependencies.
func Resolve[T any](key string) T {
	return ResolveFrom[T](defaultContainer, key)
}

// ResolveOptional returns the implementation registered under key in the
// package-level container, or the zero value of T when nothing is
// registered. Generated code uses it for optional dependencies.
func ResolveOptional[T any](key string) T {
	return ResolveOptionalFrom[T](defaultContainer, key)
}

// ResolveFrom is Resolve against an explicit container.
func ResolveFrom[T any](c *Container, key string) T {
	v := c.mustGet(key)
	typed, ok := v.(T)
	if !ok {
		panic(&ResolutionError{Key: key, Message: "registered value has unexpected type"})
	}
	return typed
}

// ResolveOptionalFrom is ResolveOptional against an explicit container.
func ResolveOptionalFrom[T any](c *Container, key string) T {
	v, ok := c.get(key)
	if !ok {
		var zero T
		return zero
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero
	}
	return typed
}
