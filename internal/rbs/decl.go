package rbs

// --- Enums ---

// DeclKind classifies one declaration in an RBS document.
type DeclKind string

const (
	KindClass         DeclKind = "class"
	KindModule        DeclKind = "module"
	KindInterface     DeclKind = "interface"
	KindTypeAlias     DeclKind = "type-alias"
	KindConstant      DeclKind = "constant"
	KindGlobal        DeclKind = "global"
	KindMethod        DeclKind = "method"
	KindMethodAlias   DeclKind = "method-alias"
	KindAttrReader    DeclKind = "attr-reader"
	KindAttrWriter    DeclKind = "attr-writer"
	KindAttrAccessor  DeclKind = "attr-accessor"
	KindInclude       DeclKind = "include"
	KindExtend        DeclKind = "extend"
	KindPrepend       DeclKind = "prepend"
	KindInstanceVar   DeclKind = "instance-variable"
	KindClassInstVar  DeclKind = "class-instance-variable"
	KindClassVar      DeclKind = "class-variable"
	KindVisibility    DeclKind = "visibility"
	KindUnknown       DeclKind = "unknown"
)

// MethodKind distinguishes instance methods from singleton (self.) methods.
type MethodKind string

const (
	MethodInstance  MethodKind = "instance"
	MethodSingleton MethodKind = "singleton"
)

// containerKinds are the kinds that carry a member list.
var containerKinds = map[DeclKind]bool{
	KindClass:     true,
	KindModule:    true,
	KindInterface: true,
}

// --- Model ---

// Decl is one semantic unit of an RBS document. Decls are created once per
// parse and never mutated afterwards; containers own their Members.
type Decl struct {
	Kind DeclKind

	// Name is the declared name. For KindMethodAlias it is the new name and
	// OldName carries the aliased-from name. Unnamed nodes leave it empty.
	Name    string
	OldName string

	// MethodKind is set only for KindMethod.
	MethodKind MethodKind

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int
	EndLine   int

	// CommentStartLine is the first line of an attached leading comment
	// block, or 0 when no comment is attached. It extends the declaration's
	// effective start for text extraction only, never for matching.
	CommentStartLine int

	// Members holds nested declarations, present only for container kinds.
	Members []*Decl
}

// IsContainer reports whether the declaration carries a member list.
func (d *Decl) IsContainer() bool {
	return containerKinds[d.Kind]
}

// EffectiveStart returns the first line of the declaration's text span,
// including an attached leading comment when one exists.
func (d *Decl) EffectiveStart() int {
	if d.CommentStartLine > 0 && d.CommentStartLine < d.StartLine {
		return d.CommentStartLine
	}
	return d.StartLine
}
