package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/stylist/internal/workspace"
)

func TestFile_NewDiagnostic(t *testing.T) {
	doc := &workspace.Document{ID: "/src/a.go", Name: "a.go", Path: "/src/a.go"}
	f := &File{Document: doc}

	d := f.NewDiagnostic(testDescriptor, NewLineLocation("", 4), "msg")
	assert.Equal(t, "/src/a.go", d.DocumentID)
	assert.Equal(t, "/src/a.go", d.File())
	assert.Equal(t, "/src", f.Dir())

	mem := &File{Document: &workspace.Document{ID: "p#doc.go", Name: "doc.go"}}
	assert.Equal(t, "doc.go", mem.Path())
	assert.Empty(t, mem.Dir())
}

func TestEditAction(t *testing.T) {
	doc := &workspace.Document{ID: "a", Content: []byte("x \n")}
	action := EditAction("trim", doc, []TextEdit{{Location: NewRangeLocation("a", 1, 1, 1, 2)}})

	ops, err := action.Operations(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, workspace.ChangeContent{DocumentID: "a", Content: []byte("x\n")}, ops[0])
}

func TestEditAction_Overlap(t *testing.T) {
	doc := &workspace.Document{ID: "a", Content: []byte("abc\n")}
	action := EditAction("bad", doc, []TextEdit{
		{Location: NewRangeLocation("a", 1, 0, 1, 2)},
		{Location: NewRangeLocation("a", 1, 1, 1, 3)},
	})
	_, err := action.Operations(context.Background())
	require.ErrorIs(t, err, ErrOverlappingEdits)
}
