package rbs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseSource parses and fails the test on any diagnostic.
func parseSource(t *testing.T, source string) *ParseResult {
	t.Helper()
	res, err := NewScanParser().Parse(context.Background(), source)
	require.NoError(t, err)
	return res
}

// findDecl returns the first declaration with the given name, or nil.
func findDecl(decls []*Decl, name string) *Decl {
	for _, d := range decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// assertSpan checks a declaration's 1-based inclusive line range.
func assertSpan(t *testing.T, d *Decl, start, end int) {
	t.Helper()
	require.NotNil(t, d)
	assert.Equal(t, start, d.StartLine, "start line of %s", d.Name)
	assert.Equal(t, end, d.EndLine, "end line of %s", d.Name)
}

// ---------------------------------------------------------------------------
// TestScanParser_Containers
// ---------------------------------------------------------------------------

func TestScanParser_Containers(t *testing.T) {
	res := parseSource(t, `class Foo[T] < Bar
  def bar: (String) -> Integer
end

module Util
end

interface _Readable
  def read: () -> String
end
`)

	require.Len(t, res.Decls, 3)

	foo := findDecl(res.Decls, "Foo")
	require.NotNil(t, foo)
	assert.Equal(t, KindClass, foo.Kind)
	assertSpan(t, foo, 1, 3)
	require.Len(t, foo.Members, 1)
	assert.Equal(t, KindMethod, foo.Members[0].Kind)
	assert.Equal(t, "bar", foo.Members[0].Name)
	assert.Equal(t, MethodInstance, foo.Members[0].MethodKind)

	util := findDecl(res.Decls, "Util")
	require.NotNil(t, util)
	assert.Equal(t, KindModule, util.Kind)
	assertSpan(t, util, 5, 6)
	assert.Empty(t, util.Members)

	readable := findDecl(res.Decls, "_Readable")
	require.NotNil(t, readable)
	assert.Equal(t, KindInterface, readable.Kind)
	assertSpan(t, readable, 8, 10)
}

func TestScanParser_NestedContainers(t *testing.T) {
	res := parseSource(t, `module Outer
  class Inner
    def go: () -> void
  end
end
`)

	require.Len(t, res.Decls, 1)
	outer := res.Decls[0]
	assertSpan(t, outer, 1, 5)
	require.Len(t, outer.Members, 1)

	inner := outer.Members[0]
	assert.Equal(t, KindClass, inner.Kind)
	assertSpan(t, inner, 2, 4)
	require.Len(t, inner.Members, 1)
	assert.Equal(t, "go", inner.Members[0].Name)
}

func TestScanParser_ModuleAlias(t *testing.T) {
	res := parseSource(t, "module Shorthand = Very::Long::Name\n")

	require.Len(t, res.Decls, 1)
	assert.Equal(t, KindModule, res.Decls[0].Kind)
	assert.Equal(t, "Shorthand", res.Decls[0].Name)
	assertSpan(t, res.Decls[0], 1, 1)
}

// ---------------------------------------------------------------------------
// TestScanParser_Methods
// ---------------------------------------------------------------------------

func TestScanParser_SingletonMethod(t *testing.T) {
	res := parseSource(t, `class Foo
  def self.build: () -> Foo
  def build: () -> untyped
end
`)

	foo := res.Decls[0]
	require.Len(t, foo.Members, 2)
	assert.Equal(t, MethodSingleton, foo.Members[0].MethodKind)
	assert.Equal(t, MethodInstance, foo.Members[1].MethodKind)
	assert.Equal(t, foo.Members[0].Name, foo.Members[1].Name)
}

func TestScanParser_MethodOverloads(t *testing.T) {
	res := parseSource(t, `class Num
  def +: (Integer) -> Integer
       | (Float) -> Float
       | (untyped) -> untyped
  def zero?: () -> bool
end
`)

	num := res.Decls[0]
	require.Len(t, num.Members, 2)

	plus := num.Members[0]
	assert.Equal(t, "+", plus.Name)
	assertSpan(t, plus, 2, 4)

	zero := num.Members[1]
	assert.Equal(t, "zero?", zero.Name)
	assertSpan(t, zero, 5, 5)
}

// ---------------------------------------------------------------------------
// TestScanParser_OtherDeclarations
// ---------------------------------------------------------------------------

func TestScanParser_TopLevelForms(t *testing.T) {
	res := parseSource(t, `type config = { name: String }

MAX: Integer

$stderr_log: IO
`)

	require.Len(t, res.Decls, 3)
	assert.Equal(t, KindTypeAlias, res.Decls[0].Kind)
	assert.Equal(t, "config", res.Decls[0].Name)
	assert.Equal(t, KindConstant, res.Decls[1].Kind)
	assert.Equal(t, "MAX", res.Decls[1].Name)
	assert.Equal(t, KindGlobal, res.Decls[2].Kind)
	assert.Equal(t, "stderr_log", res.Decls[2].Name)
}

func TestScanParser_MemberForms(t *testing.T) {
	res := parseSource(t, `class Widget
  include Comparable
  extend Forwardable
  prepend Instrumented
  attr_reader name: String
  attr_accessor size: Integer
  alias to_str to_s
  @cache: Hash[String, untyped]
  self.@registry: Hash[String, Widget]
  @@count: Integer
  private
  def secret: () -> void
end
`)

	w := res.Decls[0]
	require.Len(t, w.Members, 11)

	kinds := make([]DeclKind, len(w.Members))
	for i, m := range w.Members {
		kinds[i] = m.Kind
	}
	assert.Equal(t, []DeclKind{
		KindInclude, KindExtend, KindPrepend,
		KindAttrReader, KindAttrAccessor,
		KindMethodAlias,
		KindInstanceVar, KindClassInstVar, KindClassVar,
		KindVisibility, KindMethod,
	}, kinds)

	aliasDecl := w.Members[5]
	assert.Equal(t, "to_str", aliasDecl.Name)
	assert.Equal(t, "to_s", aliasDecl.OldName)

	assert.Equal(t, "cache", w.Members[6].Name)
	assert.Equal(t, "registry", w.Members[7].Name)
	assert.Equal(t, "count", w.Members[8].Name)
	assert.Equal(t, "private", w.Members[9].Name)
}

// ---------------------------------------------------------------------------
// TestScanParser_Comments
// ---------------------------------------------------------------------------

func TestScanParser_LeadingCommentAttachment(t *testing.T) {
	res := parseSource(t, `# Doc line one.
# Doc line two.
class Foo
end

# Orphan comment, separated by the blank line below.

type t = String
`)

	foo := findDecl(res.Decls, "Foo")
	require.NotNil(t, foo)
	assert.Equal(t, 1, foo.CommentStartLine)
	assert.Equal(t, 1, foo.EffectiveStart())

	alias := findDecl(res.Decls, "t")
	require.NotNil(t, alias)
	assert.Zero(t, alias.CommentStartLine, "blank line breaks comment attachment")
	assert.Equal(t, 8, alias.EffectiveStart())
}

// ---------------------------------------------------------------------------
// TestScanParser_Errors
// ---------------------------------------------------------------------------

func TestScanParser_MissingEnd(t *testing.T) {
	_, err := NewScanParser().Parse(context.Background(), "class Foo\n  def bar: () -> void\n")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.NotEmpty(t, pe.Diagnostics)
	assert.Equal(t, 1, pe.Diagnostics[0].Line)
	assert.Contains(t, pe.Diagnostics[0].Message, "missing end")
}

func TestScanParser_UnmatchedEnd(t *testing.T) {
	_, err := NewScanParser().Parse(context.Background(), "class Foo\nend\nend\n")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Diagnostics[0].Message, "unmatched end")
}

func TestScanParser_UnknownLine(t *testing.T) {
	res := parseSource(t, "use Something\n")

	require.Len(t, res.Decls, 1)
	assert.Equal(t, KindUnknown, res.Decls[0].Kind)
	assert.Equal(t, "use", res.Decls[0].Name)
}

func TestScanParser_Empty(t *testing.T) {
	res := parseSource(t, "")
	assert.Empty(t, res.Decls)
}
