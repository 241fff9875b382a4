package rbs

import (
	"context"
	"regexp"
	"strings"
)

// Line patterns for the declarations the scanner recognizes. RBS is
// line-oriented enough that one anchored expression per declaration form
// covers the grammar subset this tool merges.
var (
	containerRe = regexp.MustCompile(`^(class|module|interface)\s+([A-Za-z_][\w:]*)`)
	methodRe    = regexp.MustCompile(`^def\s+(self\.)?(\S+?):\s`)
	typeAliasRe = regexp.MustCompile(`^type\s+([A-Za-z_][\w:]*)\s*=`)
	aliasRe     = regexp.MustCompile(`^alias\s+(?:self\.)?(\S+)\s+(?:self\.)?(\S+)`)
	attrRe      = regexp.MustCompile(`^attr_(reader|writer|accessor)\s+(?:self\.)?([^:\s]+)\s*:`)
	mixinRe     = regexp.MustCompile(`^(include|extend|prepend)\s+([A-Za-z_][\w:]*)`)
	classVarRe  = regexp.MustCompile(`^@@([A-Za-z_]\w*)\s*:`)
	classIVarRe = regexp.MustCompile(`^self\.@([A-Za-z_]\w*)\s*:`)
	iVarRe      = regexp.MustCompile(`^@([A-Za-z_]\w*)\s*:`)
	globalRe    = regexp.MustCompile(`^\$([A-Za-z_]\w*)\s*:`)
	constantRe  = regexp.MustCompile(`^([A-Z][\w]*(?:::[A-Z]\w*)*)\s*:`)
)

var attrKinds = map[string]DeclKind{
	"reader":   KindAttrReader,
	"writer":   KindAttrWriter,
	"accessor": KindAttrAccessor,
}

var mixinKinds = map[string]DeclKind{
	"include": KindInclude,
	"extend":  KindExtend,
	"prepend": KindPrepend,
}

var containerDeclKinds = map[string]DeclKind{
	"class":     KindClass,
	"module":    KindModule,
	"interface": KindInterface,
}

// ScanParser is the default parser backend: a recursive line scanner that
// extracts the declaration forms of RBS. One instance is safe for
// sequential reuse; Parse calls do not share state.
type ScanParser struct{}

// NewScanParser creates a ScanParser.
func NewScanParser() *ScanParser {
	return &ScanParser{}
}

// Parse extracts the ordered top-level declarations of one document.
func (p *ScanParser) Parse(_ context.Context, source string) (*ParseResult, error) {
	lines := strings.Split(source, "\n")
	s := &scanState{lines: lines}

	decls, next, closed := s.parseBlock(0)
	if closed {
		s.fatal(next+1, "unmatched end at top level")
	}

	if len(s.diags) > 0 {
		return nil, &ParseError{Diagnostics: s.diags}
	}
	return &ParseResult{Decls: decls, Source: source, Lines: lines}, nil
}

type scanState struct {
	lines []string
	diags []Diagnostic
}

func (s *scanState) fatal(line int, msg string) {
	s.diags = append(s.diags, Diagnostic{Line: line, Message: msg})
}

// parseBlock scans declarations from index start until an `end` line closes
// the block or the input runs out. It returns the declarations, the index
// of the terminating line, and whether an `end` was seen.
func (s *scanState) parseBlock(start int) (decls []*Decl, next int, closed bool) {
	i := start
	comment := 0 // 1-based first line of the pending leading-comment run

	for i < len(s.lines) {
		trimmed := strings.TrimSpace(s.lines[i])
		lineNo := i + 1

		switch {
		case trimmed == "":
			comment = 0
			i++
			continue
		case strings.HasPrefix(trimmed, "#"):
			if comment == 0 {
				comment = lineNo
			}
			i++
			continue
		case trimmed == "end":
			return decls, i, true
		}

		decl, nextIdx := s.parseDecl(i, trimmed)
		decl.CommentStartLine = comment
		comment = 0
		decls = append(decls, decl)
		i = nextIdx
	}

	return decls, i, false
}

// parseDecl classifies one declaration starting at index i (trimmed is the
// whitespace-trimmed line) and returns it plus the index after its span.
func (s *scanState) parseDecl(i int, trimmed string) (*Decl, int) {
	lineNo := i + 1

	if m := containerRe.FindStringSubmatch(trimmed); m != nil {
		kind := containerDeclKinds[m[1]]
		// `module Foo = Bar` style aliases are single-line and have no body.
		if singleLineContainerAlias(trimmed, m[0]) {
			return &Decl{Kind: kind, Name: m[2], StartLine: lineNo, EndLine: lineNo}, i + 1
		}
		members, endIdx, closed := s.parseBlock(i + 1)
		if !closed {
			s.fatal(lineNo, "missing end for "+m[1]+" "+m[2])
			return &Decl{Kind: kind, Name: m[2], StartLine: lineNo, EndLine: len(s.lines), Members: members}, len(s.lines)
		}
		return &Decl{
			Kind:      kind,
			Name:      m[2],
			StartLine: lineNo,
			EndLine:   endIdx + 1,
			Members:   members,
		}, endIdx + 1
	}

	if m := methodRe.FindStringSubmatch(trimmed); m != nil {
		kind := MethodInstance
		if m[1] != "" {
			kind = MethodSingleton
		}
		end := s.extendOverloads(i)
		return &Decl{
			Kind:       KindMethod,
			Name:       m[2],
			MethodKind: kind,
			StartLine:  lineNo,
			EndLine:    end + 1,
		}, end + 1
	}

	if m := typeAliasRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindTypeAlias, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := aliasRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindMethodAlias, Name: m[1], OldName: m[2], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := attrRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: attrKinds[m[1]], Name: m[2], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := mixinRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: mixinKinds[m[1]], Name: m[2], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := classVarRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindClassVar, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := classIVarRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindClassInstVar, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := iVarRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindInstanceVar, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := globalRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindGlobal, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if trimmed == "public" || trimmed == "private" {
		return &Decl{Kind: KindVisibility, Name: trimmed, StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	if m := constantRe.FindStringSubmatch(trimmed); m != nil {
		return &Decl{Kind: KindConstant, Name: m[1], StartLine: lineNo, EndLine: lineNo}, i + 1
	}

	name, _, _ := strings.Cut(trimmed, " ")
	return &Decl{Kind: KindUnknown, Name: name, StartLine: lineNo, EndLine: lineNo}, i + 1
}

// extendOverloads consumes `|`-prefixed overload continuation lines that
// follow a method definition at index i and returns the index of the last
// line belonging to the method.
func (s *scanState) extendOverloads(i int) int {
	end := i
	for j := i + 1; j < len(s.lines); j++ {
		if !strings.HasPrefix(strings.TrimSpace(s.lines[j]), "|") {
			break
		}
		end = j
	}
	return end
}

// singleLineContainerAlias reports whether a class/module header line is an
// alias form (`module Foo = Bar`), which carries no body and no `end`.
func singleLineContainerAlias(trimmed, header string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, header))
	return strings.HasPrefix(rest, "=")
}
