package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderwire/renderwire/internal/models"
	"github.com/renderwire/renderwire/internal/resolver"
)

func resolverWith(t *testing.T, source string) *resolver.Resolver {
	t.Helper()
	r := resolver.New(".")
	require.NoError(t, r.ScanSource("services.go", source))
	return r
}

func TestGenerateResolvedRequired(t *testing.T) {
	r := resolverWith(t, `package services

//di::service -Implements=UserAPI
type RestUserAPI struct{}
`)

	decls := []models.DependencyDeclaration{
		{PropertyName: "API", AbstractTypeSignature: "UserAPI"},
	}
	block := GenerateDICode(decls, r, "services", "PageServices")

	require.Len(t, block.Lines, 2)
	assert.Equal(t, `api := di.Resolve[UserAPI]("UserAPI")`, block.Lines[0])
	assert.Equal(t, `services := PageServices{API: api}`, block.Lines[1])
	assert.Equal(t, 1, block.Resolved)
	assert.Equal(t, 0, block.Unresolved)
}

func TestGenerateUnresolvedRequiredCarriesMarker(t *testing.T) {
	r := resolver.New(".")
	require.NoError(t, r.ScanSource("empty.go", "package services\n"))

	decls := []models.DependencyDeclaration{
		{PropertyName: "API", AbstractTypeSignature: "UserAPI"},
	}
	block := GenerateDICode(decls, r, "services", "PageServices")

	require.Len(t, block.Lines, 2)
	assert.Equal(t, `api := di.Resolve[UserAPI]("UserAPI") // di: no implementation found for UserAPI`, block.Lines[0])
	assert.Equal(t, 1, block.Unresolved)
}

func TestGenerateOptional(t *testing.T) {
	r := resolverWith(t, `package services

//di::service -Implements=Cache[string]
type StringCache struct{}
`)

	decls := []models.DependencyDeclaration{
		{PropertyName: "Cache", AbstractTypeSignature: "Cache[string]", IsOptional: true, IsGeneric: true},
		{PropertyName: "Extra", AbstractTypeSignature: "Tracer", IsOptional: true},
	}
	block := GenerateDICode(decls, r, "services", "PageServices")

	require.Len(t, block.Lines, 3)
	assert.Equal(t, `cache := di.ResolveOptional[Cache[string]]("Cache_string")`, block.Lines[0])
	assert.Equal(t, `var extra Tracer // di: optional dependency not registered`, block.Lines[1])
	assert.Equal(t, `services := PageServices{Cache: cache, Extra: extra}`, block.Lines[2])
	assert.Equal(t, 1, block.Resolved)
	assert.Equal(t, 1, block.Unresolved)
}

func TestAggregateKeepsDeclaredOrder(t *testing.T) {
	r := resolverWith(t, `package services

//di::service -Implements=B
type ImplB struct{}

//di::service -Implements=A
type ImplA struct{}
`)

	decls := []models.DependencyDeclaration{
		{PropertyName: "Second", AbstractTypeSignature: "B"},
		{PropertyName: "First", AbstractTypeSignature: "A"},
	}
	block := GenerateDICode(decls, r, "services", "PageServices")

	assert.Equal(t, `services := PageServices{Second: second, First: first}`, block.Lines[len(block.Lines)-1])
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "api", localName("API"))
	assert.Equal(t, "cache", localName("Cache"))
	assert.Equal(t, "userStore", localName("UserStore"))
	assert.Equal(t, "db", localName("DB"))
	assert.Equal(t, "_", localName(""))
}
