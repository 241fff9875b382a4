package merge

import (
	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// Source records where an emitted statement's text came from.
type Source string

const (
	SourceTemplate    Source = "template"
	SourceDestination Source = "destination"
	SourceRecursive   Source = "recursive"
)

// Decision tags one emitted statement with why it was chosen.
type Decision string

const (
	DecisionTemplate    Decision = "template"
	DecisionDestination Decision = "destination"
	DecisionProtected   Decision = "protected-region"
	DecisionAdded       Decision = "added"
	DecisionRecursive   Decision = "recursive"
)

// resolution is the outcome of conflict resolution for one matched pair.
type resolution struct {
	source   Source
	decision Decision

	// lines carries the reconstructed text when source is
	// SourceRecursive.
	lines []string
}

// resolve decides which side of a matched pair wins. Rules apply in order:
// a protected region on either side always wins for its side; textually
// identical statements keep the destination (no diff noise); matched
// containers with members on both sides merge recursively; everything else
// follows the configured preference.
func (p *pipeline) resolve(tmpl, dest *Document, e alignmentEntry, depth int) resolution {
	if _, ok := e.templateStmt.(*regionStatement); ok {
		return resolution{source: SourceTemplate, decision: DecisionProtected}
	}
	if _, ok := e.destStmt.(*regionStatement); ok {
		return resolution{source: SourceDestination, decision: DecisionProtected}
	}

	tText := tmpl.statementText(e.templateStmt)
	dText := dest.statementText(e.destStmt)
	if normalizeBlock(tText) == normalizeBlock(dText) {
		return resolution{source: SourceDestination, decision: DecisionDestination}
	}

	tDecl := e.templateStmt.(*declStatement).decl
	dDecl := e.destStmt.(*declStatement).decl
	if tDecl.IsContainer() && tDecl.Kind == dDecl.Kind &&
		len(tDecl.Members) > 0 && len(dDecl.Members) > 0 {
		return resolution{
			source:   SourceRecursive,
			decision: DecisionRecursive,
			lines:    p.mergeContainers(tmpl, dest, tDecl, dDecl, depth),
		}
	}

	if p.pref(dDecl.Kind) == SideTemplate {
		return resolution{source: SourceTemplate, decision: DecisionTemplate}
	}
	return resolution{source: SourceDestination, decision: DecisionDestination}
}

// mergeContainers merges two matched containers member by member: the
// member lists go through the same align/resolve/assemble pipeline, with
// protected regions inside either container applied to its members. The
// header and footer lines come from the preferred side. Past the
// configured recursion depth the preferred side is taken wholesale.
func (p *pipeline) mergeContainers(tmpl, dest *Document, tDecl, dDecl *rbs.Decl, depth int) []string {
	winDoc, winDecl := dest, dDecl
	if p.pref(dDecl.Kind) == SideTemplate {
		winDoc, winDecl = tmpl, tDecl
	}

	if p.cfg.MaxRecursionDepth > 0 && depth > p.cfg.MaxRecursionDepth {
		return containerSpan(winDoc, winDecl)
	}

	tmplSub := memberDocument(tmpl, tDecl)
	destSub := memberDocument(dest, dDecl)
	winSub := destSub
	if winDoc == tmpl {
		winSub = tmplSub
	}
	if len(winSub.Statements) == 0 {
		return containerSpan(winDoc, winDecl)
	}

	body, _ := p.mergeStatements(tmplSub, destSub, depth+1)

	headStart := extendOverGap(clampTextStart(winDecl, winDoc.Regions), winDoc.Lines)
	bodyStart := winSub.Statements[0].TextStart()
	bodyEnd := 0
	for _, s := range winSub.Statements {
		if _, end := s.Span(); end > bodyEnd {
			bodyEnd = end
		}
	}

	var out []string
	out = append(out, winDoc.Lines[headStart-1:bodyStart-1]...)
	out = append(out, body...)
	out = append(out, winDoc.Lines[bodyEnd:winDecl.EndLine]...)
	return out
}

// containerSpan is a container's full text from the owning document,
// leading comment included.
func containerSpan(doc *Document, d *rbs.Decl) []string {
	start := extendOverGap(clampTextStart(d, doc.Regions), doc.Lines)
	return doc.Lines[start-1 : d.EndLine]
}

// memberDocument builds a statement-list view over a container's members,
// scoping the document's protected regions to the container body.
func memberDocument(doc *Document, c *rbs.Decl) *Document {
	var scoped []*ProtectedRegion
	for _, r := range doc.Regions {
		if !r.insideSpan(c.StartLine, c.EndLine) {
			continue
		}
		sr := &ProtectedRegion{StartLine: r.StartLine, EndLine: r.EndLine, Reason: r.Reason}
		for _, m := range c.Members {
			switch {
			case sr.contains(m):
				sr.Contained = append(sr.Contained, m)
				sr.Overlapping = append(sr.Overlapping, m)
			case sr.intersects(m):
				sr.Overlapping = append(sr.Overlapping, m)
			}
		}
		scoped = append(scoped, sr)
	}

	return &Document{
		Statements: buildStatements(c.Members, scoped, doc.Lines),
		Regions:    scoped,
		Lines:      doc.Lines,
		Source:     doc.Source,
	}
}
