package annotations

import (
	"fmt"
	"strings"
)

// DirectiveType represents the type of a //di:: directive
type DirectiveType int

const (
	ServiceDirective DirectiveType = iota
)

// String returns the string representation of the directive type
func (d DirectiveType) String() string {
	switch d {
	case ServiceDirective:
		return "service"
	default:
		return "unknown"
	}
}

// ParseDirectiveType converts string to DirectiveType
func ParseDirectiveType(s string) (DirectiveType, error) {
	switch s {
	case "service":
		return ServiceDirective, nil
	default:
		return 0, fmt.Errorf("unknown directive type: %s", s)
	}
}

// SourceLocation represents the location of a directive in source code
type SourceLocation struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// ParsedDirective represents a fully parsed //di:: directive
type ParsedDirective struct {
	Type       DirectiveType
	Target     string // annotated struct name, filled in by the caller
	Parameters map[string]string
	Location   SourceLocation
	Raw        string // original directive text
}

// GetString returns a string parameter value with optional default
func (p *ParsedDirective) GetString(name string, defaultValue ...string) string {
	if value, exists := p.Parameters[name]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetStringSlice returns a comma-separated parameter as a slice. Empty
// entries are dropped.
func (p *ParsedDirective) GetStringSlice(name string) []string {
	raw, exists := p.Parameters[name]
	if !exists {
		return nil
	}
	parts := splitTopLevel(raw, ',')
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// HasParameter checks if a parameter exists
func (p *ParsedDirective) HasParameter(name string) bool {
	_, exists := p.Parameters[name]
	return exists
}

// splitTopLevel splits on sep but ignores separators nested inside square
// brackets, so generic signatures like Map[string,int] survive intact.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	current := strings.Builder{}

	for _, ch := range s {
		switch {
		case ch == '[':
			depth++
			current.WriteRune(ch)
		case ch == ']':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == sep && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	parts = append(parts, current.String())
	return parts
}
