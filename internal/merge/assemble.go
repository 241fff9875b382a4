package merge

import "github.com/kettle-rb/rbs-merge/internal/rbs"

// LogEntry records one emitted statement: why it was chosen, which side
// supplied its text, and how many lines it contributed. Statement indices
// are -1 on the absent side.
type LogEntry struct {
	Decision      Decision `json:"decision"`
	Source        Source   `json:"source"`
	Lines         int      `json:"lines"`
	TemplateIndex int      `json:"templateIndex"`
	DestIndex     int      `json:"destIndex"`
}

// Summary aggregates a merge's decision log.
type Summary struct {
	TotalDecisions int              `json:"totalDecisions"`
	TotalLines     int              `json:"totalLines"`
	ByDecision     map[Decision]int `json:"byDecision"`
}

func summarize(log []LogEntry) Summary {
	s := Summary{ByDecision: make(map[Decision]int)}
	for _, e := range log {
		s.TotalDecisions++
		s.TotalLines += e.Lines
		s.ByDecision[e.Decision]++
	}
	return s
}

// pipeline drives one merge invocation: align, resolve each match,
// assemble. The same pipeline recurses over container members.
type pipeline struct {
	cfg  *Config
	sig  *signatureComputer
	pref func(rbs.DeclKind) Side
}

// mergeStatements walks the sorted alignment of two statement lists and
// accumulates the output lines plus the decision log.
func (p *pipeline) mergeStatements(tmpl, dest *Document, depth int) ([]string, []LogEntry) {
	var out []string
	var log []LogEntry

	emit := func(text []string, e alignmentEntry, decision Decision, source Source) {
		out = append(out, text...)
		log = append(log, LogEntry{
			Decision:      decision,
			Source:        source,
			Lines:         len(text),
			TemplateIndex: e.templateIndex,
			DestIndex:     e.destIndex,
		})
	}

	for _, e := range alignDocuments(tmpl, dest, p.sig) {
		switch e.kind {
		case entryMatch:
			res := p.resolve(tmpl, dest, e, depth)
			switch res.source {
			case SourceRecursive:
				emit(res.lines, e, res.decision, res.source)
			case SourceTemplate:
				emit(tmpl.statementText(e.templateStmt), e, res.decision, res.source)
			default:
				emit(dest.statementText(e.destStmt), e, res.decision, res.source)
			}
		case entryTemplateOnly:
			if !p.cfg.AddTemplateOnly {
				continue
			}
			emit(tmpl.statementText(e.templateStmt), e, DecisionAdded, SourceTemplate)
		case entryDestOnly:
			decision := DecisionDestination
			if _, ok := e.destStmt.(*regionStatement); ok {
				decision = DecisionProtected
			}
			emit(dest.statementText(e.destStmt), e, decision, SourceDestination)
		}
	}

	return out, log
}
