package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DirectivePrefix is the comment prefix that marks a registration directive.
const DirectivePrefix = "di::"

// paramList is the participle grammar for the parameter tail of a
// directive, e.g. `-Implements=Cache[string],Clock -Name=RedisCache`.
type paramList struct {
	Items []paramItem `parser:"@@*"`
}

type paramItem struct {
	Name  string  `parser:"Dash @Value"`
	Value *string `parser:"(Equals @Value)?"`
}

// Parser parses //di:: directives from comment text.
type Parser struct {
	params *participle.Parser[paramList]
}

// NewParser creates a new directive parser.
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Value", Pattern: `[A-Za-z_][A-Za-z0-9_\[\]\.,/\*]*`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	params := participle.MustBuild[paramList](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
	)

	return &Parser{params: params}
}

// IsDirective reports whether a comment line carries a //di:: directive.
func IsDirective(comment string) bool {
	content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment), "//"))
	return strings.HasPrefix(content, DirectivePrefix)
}

// ParseDirective parses a single directive comment line.
func (p *Parser) ParseDirective(comment string, location SourceLocation) (*ParsedDirective, error) {
	directiveType, remaining, err := p.parseBasicStructure(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to parse directive structure: %w", err)
	}

	parsedType, err := ParseDirectiveType(directiveType)
	if err != nil {
		return nil, fmt.Errorf("invalid directive type %q: %w", directiveType, err)
	}

	parsed := &ParsedDirective{
		Type:       parsedType,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        comment,
	}

	if remaining != "" {
		list, err := p.params.ParseString(location.File, remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to parse directive parameters: %w", err)
		}
		for _, item := range list.Items {
			if item.Value != nil {
				parsed.Parameters[item.Name] = *item.Value
			} else {
				// Bare flag, recorded as present with an empty value.
				parsed.Parameters[item.Name] = ""
			}
		}
	}

	if err := p.validate(parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}

// parseBasicStructure strips the comment marker and di:: prefix and splits
// the directive type from its parameter tail.
func (p *Parser) parseBasicStructure(comment string) (directiveType, remaining string, err error) {
	comment = strings.TrimSpace(comment)

	if !strings.HasPrefix(comment, "//") {
		return "", "", fmt.Errorf("directive must start with '//'")
	}
	content := strings.TrimSpace(strings.TrimPrefix(comment, "//"))

	if !strings.HasPrefix(content, DirectivePrefix) {
		return "", "", fmt.Errorf("directive must contain %q prefix", DirectivePrefix)
	}
	content = strings.TrimPrefix(content, DirectivePrefix)

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return "", "", fmt.Errorf("empty directive")
	}

	directiveType = parts[0]
	remaining = strings.TrimSpace(strings.TrimPrefix(content, directiveType))
	return directiveType, remaining, nil
}

// validate enforces the per-type parameter schema.
func (p *Parser) validate(directive *ParsedDirective) error {
	switch directive.Type {
	case ServiceDirective:
		for name := range directive.Parameters {
			if name != "Implements" && name != "Name" {
				return fmt.Errorf("unknown parameter '%s' for service directive", name)
			}
		}
		if !directive.HasParameter("Implements") || directive.GetString("Implements") == "" {
			return fmt.Errorf("service directive requires -Implements parameter (e.g. -Implements=UserAPI)")
		}
	}
	return nil
}
