package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// analyzeDoc parses source and builds its document with the default token.
func analyzeDoc(t *testing.T, source string) *Document {
	t.Helper()
	res, err := rbs.NewScanParser().Parse(context.Background(), source)
	require.NoError(t, err)
	doc, err := newDocument(res, DefaultMarkerToken, zap.NewNop())
	require.NoError(t, err)
	return doc
}

func TestDocument_ContainedDeclsLeaveStatementList(t *testing.T) {
	doc := analyzeDoc(t, `type before = String
# rbs-merge:freeze
type frozen = Integer
# rbs-merge:unfreeze
type after = Float
`)

	require.Len(t, doc.Statements, 3)
	_, ok := doc.Statements[0].(*declStatement)
	assert.True(t, ok)
	_, ok = doc.Statements[1].(*regionStatement)
	assert.True(t, ok, "the frozen declaration is reachable only through its region")
	_, ok = doc.Statements[2].(*declStatement)
	assert.True(t, ok)

	assert.Len(t, doc.Decls, 3, "parse results keep every declaration")
}

func TestDocument_StatementsSortedByEffectiveStart(t *testing.T) {
	doc := analyzeDoc(t, `type a = String

# Documented.
type b = String
`)

	require.Len(t, doc.Statements, 2)
	assert.Equal(t, 1, doc.Statements[0].TextStart())
	// b's text starts at its comment, extended back over the blank line.
	assert.Equal(t, 2, doc.Statements[1].TextStart())
	start, end := doc.Statements[1].Span()
	assert.Equal(t, 4, start)
	assert.Equal(t, 4, end)
}

func TestDocument_CommentClampedAtRegionBoundary(t *testing.T) {
	doc := analyzeDoc(t, `# rbs-merge:freeze
type frozen = Integer
# rbs-merge:unfreeze
type after = Float
`)

	require.Len(t, doc.Statements, 2)

	// The unfreeze marker is a comment line; it must stay with the region,
	// not attach to the following declaration.
	after := doc.Statements[1]
	assert.Equal(t, 4, after.TextStart())
	assert.Equal(t, []string{"type after = Float"}, doc.statementText(after))
}

func TestDocument_WrappedRegionIsNotAStatement(t *testing.T) {
	doc := analyzeDoc(t, `class Foo
  # rbs-merge:freeze
  def bar: () -> void
  # rbs-merge:unfreeze
end
`)

	require.Len(t, doc.Statements, 1, "the region travels with its container")
	_, ok := doc.Statements[0].(*declStatement)
	assert.True(t, ok)
	require.Len(t, doc.Regions, 1)
}

func TestDocument_NestedRegionIsNotAStatement(t *testing.T) {
	doc := analyzeDoc(t, `# rbs-merge:freeze outer
type a = String
# rbs-merge:freeze inner
type b = String
# rbs-merge:unfreeze
# rbs-merge:unfreeze
`)

	require.Len(t, doc.Regions, 2)
	// Only the outer region surfaces; the inner one's lines are part of
	// the outer region's text.
	require.Len(t, doc.Statements, 1)
	rs, ok := doc.Statements[0].(*regionStatement)
	require.True(t, ok)
	assert.Equal(t, "outer", rs.region.Reason)
	assert.Len(t, doc.statementText(rs), 6)
}

func TestDocument_StatementTextIncludesLeadingComment(t *testing.T) {
	doc := analyzeDoc(t, `# Frobnicates.
def frob: () -> void
`)

	require.Len(t, doc.Statements, 1)
	assert.Equal(t, []string{"# Frobnicates.", "def frob: () -> void"},
		doc.statementText(doc.Statements[0]))
}
