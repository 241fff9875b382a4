package merge

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// Statement is one unit of a document's top-level sequence: either a
// declaration or a protected region standing in for the declarations it
// wraps.
type Statement interface {
	// Span returns the 1-based inclusive line range of the statement.
	Span() (start, end int)

	// TextStart returns the first line of the statement's text for
	// extraction purposes. For declarations this is the comment-extended
	// start, clamped so it never reaches into a preceding protected
	// region.
	TextStart() int
}

// declStatement wraps one declaration that is not inside any region.
type declStatement struct {
	decl  *rbs.Decl
	start int
}

func (s *declStatement) Span() (int, int) { return s.decl.StartLine, s.decl.EndLine }
func (s *declStatement) TextStart() int   { return s.start }

// regionStatement wraps one protected region.
type regionStatement struct {
	region *ProtectedRegion
	start  int
}

func (s *regionStatement) Span() (int, int) { return s.region.StartLine, s.region.EndLine }
func (s *regionStatement) TextStart() int   { return s.start }

// Document is the analyzed form of one input: the statement list plus the
// raw lines statements extract their text from.
type Document struct {
	Statements []Statement
	Regions    []*ProtectedRegion

	// Decls are the parsed top-level declarations, region-contained ones
	// included.
	Decls []*rbs.Decl

	Lines  []string
	Source string
}

// newDocument integrates a parse result with its protected regions.
// Declarations fully inside a region leave the flat statement list; they
// are reachable only through their region from then on.
func newDocument(res *rbs.ParseResult, markerToken string, logger *zap.Logger) (*Document, error) {
	detector := newRegionDetector(markerToken, logger)
	regions, err := detector.detect(res.Lines, res.Decls)
	if err != nil {
		return nil, err
	}

	return &Document{
		Statements: buildStatements(res.Decls, regions, res.Lines),
		Regions:    regions,
		Decls:      res.Decls,
		Lines:      res.Lines,
		Source:     res.Source,
	}, nil
}

// buildStatements merges the surviving declarations and all regions into
// one list sorted by effective start line. Each statement's text start is
// extended backwards over the blank lines separating it from whatever
// precedes it, so emitting statements in order reproduces the original
// spacing.
func buildStatements(decls []*rbs.Decl, regions []*ProtectedRegion, lines []string) []Statement {
	contained := make(map[*rbs.Decl]bool)
	for _, r := range regions {
		for _, d := range r.Contained {
			contained[d] = true
		}
	}

	var statements []Statement
	for _, d := range decls {
		if contained[d] {
			continue
		}
		start := extendOverGap(clampTextStart(d, regions), lines)
		statements = append(statements, &declStatement{decl: d, start: start})
	}
	for _, r := range regions {
		if wrappedByAny(r, decls, contained) {
			// A region inside a container's body travels with the
			// container; it surfaces again when the container's members
			// merge recursively.
			continue
		}
		if nestedInAnother(r, regions) {
			// Same for a region inside another region: its lines are
			// already part of the outer region's text.
			continue
		}
		statements = append(statements, &regionStatement{region: r, start: extendOverGap(r.StartLine, lines)})
	}

	sort.SliceStable(statements, func(i, j int) bool {
		return statements[i].TextStart() < statements[j].TextStart()
	})
	return statements
}

// wrappedByAny reports whether a region sits inside the body of any
// statement-level declaration.
func wrappedByAny(r *ProtectedRegion, decls []*rbs.Decl, contained map[*rbs.Decl]bool) bool {
	for _, d := range decls {
		if !contained[d] && r.containedBy(d) {
			return true
		}
	}
	return false
}

// nestedInAnother reports whether a region sits fully inside another
// region of the same document.
func nestedInAnother(r *ProtectedRegion, regions []*ProtectedRegion) bool {
	for _, outer := range regions {
		if outer == r {
			continue
		}
		if r.insideSpan(outer.StartLine, outer.EndLine) {
			return true
		}
	}
	return false
}

// extendOverGap walks the text start backwards over blank lines.
func extendOverGap(start int, lines []string) int {
	for start > 1 && strings.TrimSpace(lines[start-2]) == "" {
		start--
	}
	return start
}

// clampTextStart keeps a declaration's comment-extended start from
// swallowing the tail of a preceding protected region (an unfreeze marker
// is a comment line and would otherwise attach to the next declaration).
func clampTextStart(d *rbs.Decl, regions []*ProtectedRegion) int {
	start := d.EffectiveStart()
	for _, r := range regions {
		if d.StartLine > r.EndLine && start <= r.EndLine {
			start = r.EndLine + 1
		}
	}
	return start
}

// statementText extracts the statement's lines from the owning document.
func (doc *Document) statementText(s Statement) []string {
	start := s.TextStart()
	_, end := s.Span()
	if end > len(doc.Lines) {
		end = len(doc.Lines)
	}
	return doc.Lines[start-1 : end]
}
