package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kettle-rb/rbs-merge/internal/merge"
)

// formatSummary renders a decision summary as human-readable status lines.
func formatSummary(s merge.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "merged %d statements (%d lines)\n", s.TotalDecisions, s.TotalLines)

	decisions := make([]string, 0, len(s.ByDecision))
	for d := range s.ByDecision {
		decisions = append(decisions, string(d))
	}
	sort.Strings(decisions)

	for _, d := range decisions {
		fmt.Fprintf(&b, "  %-17s %d\n", d, s.ByDecision[merge.Decision(d)])
	}
	return b.String()
}
