package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

func TestContainer_RegisterAndResolve(t *testing.T) {
	c := NewContainer()
	c.Register("greeter_Greeter", englishGreeter{})

	got := ResolveFrom[greeter](c, "greeter_Greeter")
	assert.Equal(t, "hello", got.Greet())
}

func TestContainer_ResolveMissingPanics(t *testing.T) {
	c := NewContainer()

	require.PanicsWithError(t, `di: no implementation registered for required dependency (key "missing_Key")`, func() {
		ResolveFrom[greeter](c, "missing_Key")
	})
}

func TestContainer_ResolveOptionalMissingReturnsZero(t *testing.T) {
	c := NewContainer()

	got := ResolveOptionalFrom[greeter](c, "missing_Key")
	assert.Nil(t, got)

	count := ResolveOptionalFrom[int](c, "missing_Count")
	assert.Zero(t, count)
}

func TestContainer_RegisterReplacesPrevious(t *testing.T) {
	c := NewContainer()
	c.Register("count", 1).Register("count", 2)

	assert.Equal(t, 2, ResolveFrom[int](c, "count"))
}

func TestContainer_Keys(t *testing.T) {
	c := NewContainer()
	c.Register("b", 2)
	c.Register("a", 1)

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("c"))
}

func TestDefaultContainer(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("count", 7)
	assert.Equal(t, 7, Resolve[int]("count"))
	assert.Zero(t, ResolveOptional[string]("missing"))
	assert.Same(t, defaultContainer, Default())
}

func TestMarkerAliasesAreTransparent(t *testing.T) {
	// The markers are type aliases; a Required[T] value is a T.
	var g Required[greeter] = englishGreeter{}
	var o Optional[int] = 3

	assert.Equal(t, "hello", g.Greet())
	assert.Equal(t, 3, o)
}
