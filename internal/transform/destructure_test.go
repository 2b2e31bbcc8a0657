package transform

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyOfFirstFunc(t *testing.T, source string) (*DestructureProcessor, *ast.BlockStmt) {
	t.Helper()
	fileSet, file := parseTestFile(t, source)
	fn := firstFunc(t, file)
	return NewDestructureProcessor(fileSet, []byte(source)), fn.Body
}

func TestRemoveSimpleBinding(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	svcs := props.Services
	use(svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.Equal(t, "svcs", result.BoundName)
	require.Len(t, result.Edits, 1)

	rewritten := string(ApplyEdits([]byte(source), result.Edits))
	assert.NotContains(t, rewritten, "props.Services")
	assert.Contains(t, rewritten, "use(svcs)")
}

func TestRemoveVarBinding(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	var svcs = props.Services
	use(svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.Equal(t, "svcs", result.BoundName)
	rewritten := string(ApplyEdits([]byte(source), result.Edits))
	assert.NotContains(t, rewritten, "props.Services")
}

func TestMultiAssignKeepsSiblings(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	msg, svcs := props.Message, props.Services
	use(msg, svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.Equal(t, "svcs", result.BoundName)
	rewritten := string(ApplyEdits([]byte(source), result.Edits))
	assert.Contains(t, rewritten, "msg := props.Message")
	assert.NotContains(t, rewritten, "props.Services")
	assert.Contains(t, rewritten, "use(msg, svcs)")
}

func TestSiblingOrderPreserved(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	a, svcs, b := props.First, props.Services, props.Second
	use(a, b, svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	rewritten := string(ApplyEdits([]byte(source), result.Edits))
	assert.Contains(t, rewritten, "a, b := props.First, props.Second")
}

func TestNoBindingLeavesSourceUntouched(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	use(props.Message)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.Empty(t, result.Edits)
	assert.Empty(t, result.BoundName)
}

func TestOtherParamBindingIgnored(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	svcs := other.Services
	use(svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")
	assert.Empty(t, result.Edits)
}

func TestHasRemainingServicesAccess(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	use(props.Services.API)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.True(t, processor.HasRemainingServicesAccess(body, "props", result.Consumed))
}

func TestConsumedBindingNotCountedAsAccess(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	svcs := props.Services
	use(svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	assert.False(t, processor.HasRemainingServicesAccess(body, "props", result.Consumed))
}

func TestStatementRemovalTakesWholeLine(t *testing.T) {
	source := `package views

func Page(props PageProps) {
	before()
	svcs := props.Services
	after(svcs)
}
`
	processor, body := bodyOfFirstFunc(t, source)
	result := processor.RemoveServicesBindings(body, "props")

	rewritten := string(ApplyEdits([]byte(source), result.Edits))
	assert.Contains(t, rewritten, "\tbefore()\n\tafter(svcs)\n")
}
