package merge

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// ProtectedRegion is a marker-delimited line range that must survive the
// merge unchanged. Start and end lines are 1-based and inclusive, covering
// the marker lines themselves.
type ProtectedRegion struct {
	StartLine int
	EndLine   int

	// Reason is the free-text annotation after the start marker, if any.
	Reason string

	// Contained are the declarations fully inside the range.
	Contained []*rbs.Decl

	// Overlapping are all declarations whose span intersects the range.
	// Superset of Contained; used only for validation.
	Overlapping []*rbs.Decl
}

// regionDetector finds paired freeze/unfreeze markers in raw source lines.
type regionDetector struct {
	startRe *regexp.Regexp
	endRe   *regexp.Regexp
	logger  *zap.Logger
}

func newRegionDetector(token string, logger *zap.Logger) *regionDetector {
	quoted := regexp.QuoteMeta(token)
	return &regionDetector{
		startRe: regexp.MustCompile(`^\s*#\s*` + quoted + `:freeze\b\s*(.*)$`),
		endRe:   regexp.MustCompile(`^\s*#\s*` + quoted + `:unfreeze\b`),
		logger:  logger,
	}
}

type openMarker struct {
	line   int
	reason string
}

// detect scans the raw lines for marker pairs and builds one region per
// pair. Markers pair LIFO: an unfreeze closes the most recent open freeze.
// Unmatched markers on either side are warnings, not errors; a region that
// partially overlaps a declaration is a *StructuralError.
func (d *regionDetector) detect(lines []string, decls []*rbs.Decl) ([]*ProtectedRegion, error) {
	var stack []openMarker
	var regions []*ProtectedRegion

	for i, line := range lines {
		lineNo := i + 1
		if m := d.startRe.FindStringSubmatch(line); m != nil {
			stack = append(stack, openMarker{line: lineNo, reason: strings.TrimSpace(m[1])})
			continue
		}
		if d.endRe.MatchString(line) {
			if len(stack) == 0 {
				d.logger.Warn("unmatched unfreeze marker ignored", zap.Int("line", lineNo))
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			regions = append(regions, &ProtectedRegion{
				StartLine: open.line,
				EndLine:   lineNo,
				Reason:    open.reason,
			})
		}
	}

	for _, open := range stack {
		d.logger.Warn("unclosed freeze marker ignored", zap.Int("line", open.line))
	}

	flat := flattenDecls(decls)
	for _, r := range regions {
		if err := r.partition(decls, flat); err != nil {
			return nil, err
		}
	}

	sortRegions(regions)
	return regions, nil
}

// partition fills Contained and Overlapping from the document's top-level
// declarations and validates the containment invariant against every
// declaration, nested members included: anything intersecting the region
// must either sit fully inside it or fully wrap it.
func (r *ProtectedRegion) partition(topLevel, flat []*rbs.Decl) error {
	for _, decl := range topLevel {
		switch {
		case r.contains(decl):
			r.Contained = append(r.Contained, decl)
			r.Overlapping = append(r.Overlapping, decl)
		case r.intersects(decl):
			r.Overlapping = append(r.Overlapping, decl)
		}
	}

	var violations []Violation
	for _, decl := range flat {
		if r.intersects(decl) && !r.contains(decl) && !r.containedBy(decl) {
			violations = append(violations, Violation{
				Kind:      decl.Kind,
				Name:      decl.Name,
				StartLine: decl.StartLine,
				EndLine:   decl.EndLine,
			})
		}
	}
	if len(violations) > 0 {
		return &StructuralError{
			RegionStart: r.StartLine,
			RegionEnd:   r.EndLine,
			Violations:  violations,
		}
	}
	return nil
}

// contains reports whether the declaration sits fully inside the region.
// Containment uses the raw declaration span, never the comment-extended
// start.
func (r *ProtectedRegion) contains(d *rbs.Decl) bool {
	return d.StartLine >= r.StartLine && d.EndLine <= r.EndLine
}

// containedBy reports whether the declaration fully wraps the region (a
// container holding a protected region inside its body).
func (r *ProtectedRegion) containedBy(d *rbs.Decl) bool {
	return d.StartLine <= r.StartLine && d.EndLine >= r.EndLine
}

// intersects reports whether the spans overlap at all.
func (r *ProtectedRegion) intersects(d *rbs.Decl) bool {
	return d.StartLine <= r.EndLine && d.EndLine >= r.StartLine
}

// insideSpan reports whether the region sits strictly inside the given
// line range, excluding its boundary lines.
func (r *ProtectedRegion) insideSpan(start, end int) bool {
	return r.StartLine > start && r.EndLine < end
}

func flattenDecls(decls []*rbs.Decl) []*rbs.Decl {
	var out []*rbs.Decl
	for _, d := range decls {
		out = append(out, d)
		out = append(out, flattenDecls(d.Members)...)
	}
	return out
}

func sortRegions(regions []*ProtectedRegion) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].StartLine < regions[j].StartLine
	})
}
