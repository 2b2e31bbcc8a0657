package transform

import (
	"go/ast"
	"go/token"
	"sort"
)

// Edit is one byte-range replacement against the original source. The
// rewriter never reprints the syntax tree; it only splices edits into the
// original bytes, so everything outside an edit stays byte-identical.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ApplyEdits splices a set of non-overlapping edits into src. Edits are
// applied back to front so earlier offsets stay valid.
func ApplyEdits(src []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		return src
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := make([]byte, len(src))
	copy(out, src)
	for _, edit := range sorted {
		tail := append([]byte(edit.Replacement), out[edit.End:]...)
		out = append(out[:edit.Start], tail...)
	}
	return out
}

// offsetOf converts a token position to a byte offset into the file.
func offsetOf(fileSet *token.FileSet, pos token.Pos) int {
	return fileSet.Position(pos).Offset
}

// sourceText slices the original source for a node.
func sourceText(fileSet *token.FileSet, src []byte, n ast.Node) string {
	return string(src[offsetOf(fileSet, n.Pos()):offsetOf(fileSet, n.End())])
}
