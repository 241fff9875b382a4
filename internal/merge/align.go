package merge

import "sort"

// entryKind classifies one alignment entry.
type entryKind int

const (
	entryMatch entryKind = iota
	entryTemplateOnly
	entryDestOnly
)

// alignmentEntry is one correspondence between the two statement lists.
// Indices are -1 on the absent side.
type alignmentEntry struct {
	kind          entryKind
	templateIndex int
	destIndex     int
	templateStmt  Statement
	destStmt      Statement
}

// sigIndex maps signature keys to statement indices, remembering key
// insertion order for deterministic matching.
type sigIndex struct {
	order []string
	m     map[string][]int
}

func newSigIndex() *sigIndex {
	return &sigIndex{m: make(map[string][]int)}
}

func (x *sigIndex) add(key string, idx int) {
	if _, ok := x.m[key]; !ok {
		x.order = append(x.order, key)
	}
	x.m[key] = append(x.m[key], idx)
}

// statementKeys returns every signature key a statement is indexed under.
// A declaration contributes its own signature (or nothing when
// unmatchable). A protected region contributes its synthetic signature
// plus the signature of each contained declaration, which lets the region
// stand in for the declarations it wraps when matching against the other
// document.
func statementKeys(doc *Document, s Statement, sig *signatureComputer) []string {
	switch st := s.(type) {
	case *declStatement:
		if ds := sig.declSignature(st.decl); ds != nil {
			return []string{ds.Key()}
		}
		return nil
	case *regionStatement:
		keys := []string{sig.regionSignature(st.region, doc.Lines).Key()}
		for _, d := range st.region.Contained {
			if ds := sig.declSignature(d); ds != nil {
				keys = append(keys, ds.Key())
			}
		}
		return keys
	default:
		return nil
	}
}

func buildIndex(doc *Document, sig *signatureComputer) *sigIndex {
	x := newSigIndex()
	for i, s := range doc.Statements {
		for _, key := range statementKeys(doc, s, sig) {
			x.add(key, i)
		}
	}
	return x
}

// alignDocuments matches statements between template and destination by
// signature. Statements sharing a signature pair up positionally, first
// occurrence with first occurrence; the surplus on either side and every
// unmatched statement fall through as one-sided entries.
func alignDocuments(tmpl, dest *Document, sig *signatureComputer) []alignmentEntry {
	tmplIdx := buildIndex(tmpl, sig)
	destIdx := buildIndex(dest, sig)

	consumedT := make(map[int]bool)
	consumedD := make(map[int]bool)
	var entries []alignmentEntry

	for _, key := range tmplIdx.order {
		dAll, ok := destIdx.m[key]
		if !ok {
			continue
		}
		tAll := tmplIdx.m[key]
		tlist := unconsumed(tAll, consumedT)
		dlist := unconsumed(dAll, consumedD)
		n := len(tlist)
		if len(dlist) < n {
			n = len(dlist)
		}
		for i := 0; i < n; i++ {
			ti, di := tlist[i], dlist[i]
			consumedT[ti] = true
			consumedD[di] = true
			entries = append(entries, alignmentEntry{
				kind:          entryMatch,
				templateIndex: ti,
				destIndex:     di,
				templateStmt:  tmpl.Statements[ti],
				destStmt:      dest.Statements[di],
			})
		}

		// A region is indexed under every contained declaration's
		// signature and stands in for all of them: once matched, it
		// absorbs the counterpart statements sharing its other keys
		// without producing further entries.
		if matchedRegion(dest, dAll, consumedD) {
			for _, ti := range tlist[n:] {
				consumedT[ti] = true
			}
		}
		if matchedRegion(tmpl, tAll, consumedT) {
			for _, di := range dlist[n:] {
				consumedD[di] = true
			}
		}
	}

	for i, s := range tmpl.Statements {
		if !consumedT[i] {
			entries = append(entries, alignmentEntry{
				kind:          entryTemplateOnly,
				templateIndex: i,
				destIndex:     -1,
				templateStmt:  s,
			})
		}
	}
	for i, s := range dest.Statements {
		if !consumedD[i] {
			entries = append(entries, alignmentEntry{
				kind:          entryDestOnly,
				templateIndex: -1,
				destIndex:     i,
				destStmt:      s,
			})
		}
	}

	sortEntries(entries)
	return entries
}

// matchedRegion reports whether any of the indices is an already-matched
// region statement of the given document.
func matchedRegion(doc *Document, indices []int, consumed map[int]bool) bool {
	for _, i := range indices {
		if !consumed[i] {
			continue
		}
		if _, ok := doc.Statements[i].(*regionStatement); ok {
			return true
		}
	}
	return false
}

func unconsumed(indices []int, consumed map[int]bool) []int {
	var out []int
	for _, i := range indices {
		if !consumed[i] {
			out = append(out, i)
		}
	}
	return out
}

// sortEntries orders the alignment deterministically: destination-anchored
// entries (matches and destination-only) by destination index with the
// template index as tie-break, then template-only entries by template
// index. Anything unclassified sorts last.
func sortEntries(entries []alignmentEntry) {
	rank := func(e alignmentEntry) int {
		switch e.kind {
		case entryMatch, entryDestOnly:
			return 0
		case entryTemplateOnly:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rank(entries[i]), rank(entries[j])
		if ri != rj {
			return ri < rj
		}
		switch ri {
		case 0:
			if entries[i].destIndex != entries[j].destIndex {
				return entries[i].destIndex < entries[j].destIndex
			}
			return entries[i].templateIndex < entries[j].templateIndex
		case 1:
			return entries[i].templateIndex < entries[j].templateIndex
		default:
			return false
		}
	})
}
