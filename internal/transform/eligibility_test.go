package transform

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestFile(t *testing.T, source string) (*token.FileSet, *ast.File) {
	t.Helper()
	fileSet := token.NewFileSet()
	file, err := parser.ParseFile(fileSet, "test.go", source, parser.ParseComments)
	require.NoError(t, err)
	return fileSet, file
}

func firstFunc(t *testing.T, file *ast.File) *ast.FuncDecl {
	t.Helper()
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			return fn
		}
	}
	t.Fatal("no function declaration in source")
	return nil
}

func TestEligibleInlineStruct(t *testing.T) {
	_, file := parseTestFile(t, `package views

func Page(props struct {
	Message  string
	Services struct {
		API   di.Required[UserAPI]
		Cache di.Optional[Cache[string]]
	}
}) {
}
`)

	classifier := NewClassifier(nil)
	fn := firstFunc(t, file)
	assert.True(t, classifier.NeedsTransformation(fn.Type))

	paramName, decls, ok := classifier.ExtractDependencies(fn.Type)
	require.True(t, ok)
	assert.Equal(t, "props", paramName)
	require.Len(t, decls, 2)

	assert.Equal(t, "API", decls[0].PropertyName)
	assert.Equal(t, "UserAPI", decls[0].AbstractTypeSignature)
	assert.False(t, decls[0].IsOptional)
	assert.False(t, decls[0].IsGeneric)

	assert.Equal(t, "Cache", decls[1].PropertyName)
	assert.Equal(t, "Cache[string]", decls[1].AbstractTypeSignature)
	assert.True(t, decls[1].IsOptional)
	assert.True(t, decls[1].IsGeneric)
}

func TestEligibleNamedTypes(t *testing.T) {
	_, file := parseTestFile(t, `package views

type PageServices struct {
	API di.Required[UserAPI]
}

type PageProps struct {
	Title    string
	Services PageServices
}

func Page(props PageProps) {
}
`)

	scope := BuildTypeScope([]*ast.File{file})
	classifier := NewClassifier(scope)
	fn := firstFunc(t, file)

	paramName, decls, ok := classifier.ExtractDependencies(fn.Type)
	require.True(t, ok)
	assert.Equal(t, "props", paramName)
	require.Len(t, decls, 1)
	assert.Equal(t, "UserAPI", decls[0].AbstractTypeSignature)
}

func TestNotEligible(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			"no parameters",
			`package views
func Page() {}`,
		},
		{
			"two parameters",
			`package views
func Page(a struct{ Services struct{ API di.Required[UserAPI] } }, b int) {}`,
		},
		{
			"grouped parameter names",
			`package views
func Page(a, b struct{ Services struct{ API di.Required[UserAPI] } }) {}`,
		},
		{
			"non-struct parameter",
			`package views
func Page(props int) {}`,
		},
		{
			"no services field",
			`package views
func Page(props struct{ Message string }) {}`,
		},
		{
			"empty services struct",
			`package views
func Page(props struct {
	Message  string
	Services struct{}
}) {}`,
		},
		{
			"services without markers",
			`package views
func Page(props struct {
	Services struct {
		Plain string
	}
}) {}`,
		},
		{
			"lowercase services field",
			`package views
func Page(props struct {
	services struct {
		API di.Required[UserAPI]
	}
}) {}`,
		},
		{
			"marker from wrong package",
			`package views
func Page(props struct {
	Services struct {
		API other.Required[UserAPI]
	}
}) {}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, file := parseTestFile(t, tt.source)
			classifier := NewClassifier(nil)
			fn := firstFunc(t, file)
			assert.False(t, classifier.NeedsTransformation(fn.Type))
		})
	}
}

func TestPlainFieldsCoexistWithMarkers(t *testing.T) {
	_, file := parseTestFile(t, `package views

func Page(props struct {
	Services struct {
		Plain string
		API   di.Required[UserAPI]
	}
}) {
}
`)

	classifier := NewClassifier(nil)
	fn := firstFunc(t, file)
	_, decls, ok := classifier.ExtractDependencies(fn.Type)
	require.True(t, ok)
	require.Len(t, decls, 1)
	assert.Equal(t, "API", decls[0].PropertyName)
}

func TestGenericMarkerSignatures(t *testing.T) {
	_, file := parseTestFile(t, `package views

func Page(props struct {
	Services struct {
		Pair di.Required[Lookup[string, int]]
		Ptr  di.Optional[*bytes.Buffer]
	}
}) {
}
`)

	classifier := NewClassifier(nil)
	fn := firstFunc(t, file)
	_, decls, ok := classifier.ExtractDependencies(fn.Type)
	require.True(t, ok)
	require.Len(t, decls, 2)
	assert.Equal(t, "Lookup[string, int]", decls[0].AbstractTypeSignature)
	assert.True(t, decls[0].IsGeneric)
	assert.Equal(t, "*bytes.Buffer", decls[1].AbstractTypeSignature)
	assert.False(t, decls[1].IsGeneric)
}
