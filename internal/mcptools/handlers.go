package mcptools

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kettle-rb/rbs-merge/internal/merge"
	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// MergeService holds the shared state behind the MCP tool handlers.
type MergeService struct {
	logger *zap.Logger
}

// NewMergeService creates a MergeService. A nil logger means no warning
// output.
func NewMergeService(logger *zap.Logger) *MergeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeService{logger: logger}
}

// resolveText returns inline text when given, otherwise reads the file at
// path. Exactly one of the two must be set.
func resolveText(what, text, path string) (string, error) {
	switch {
	case text != "" && path != "":
		return "", fmt.Errorf("%s: give either inline text or a path, not both", what)
	case text != "":
		return text, nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", what, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%s is required (inline text or path)", what)
	}
}

// MergeSignatures merges a template RBS document into a destination
// document and returns the merged text with a decision summary.
func (s *MergeService) MergeSignatures(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeSignaturesInput,
) (*mcp.CallToolResult, MergeSignaturesOutput, error) {
	templateText, err := resolveText("template", input.TemplateText, input.TemplatePath)
	if err != nil {
		return nil, MergeSignaturesOutput{}, err
	}
	destinationText, err := resolveText("destination", input.DestinationText, input.DestinationPath)
	if err != nil {
		return nil, MergeSignaturesOutput{}, err
	}

	var pref merge.Preference
	switch {
	case input.Preference != "" && input.PreferenceByKind != nil:
		return nil, MergeSignaturesOutput{}, fmt.Errorf("preference and preferenceByKind are mutually exclusive")
	case input.Preference != "":
		pref = merge.GlobalPreference(merge.Side(input.Preference))
	case input.PreferenceByKind != nil:
		perKind := make(map[string]merge.Side, len(input.PreferenceByKind))
		for kind, side := range input.PreferenceByKind {
			perKind[kind] = merge.Side(side)
		}
		pref = merge.KindPreference(perKind)
	}

	merger, err := merge.New(templateText, destinationText, merge.Config{
		Preference:      pref,
		AddTemplateOnly: input.AddTemplateOnly,
		MarkerToken:     input.MarkerToken,
		Logger:          s.logger,
	})
	if err != nil {
		return nil, MergeSignaturesOutput{}, err
	}

	result, err := merger.MergeResult(ctx)
	if err != nil {
		return nil, MergeSignaturesOutput{}, err
	}

	return nil, MergeSignaturesOutput{
		MergedText:     result.Text,
		TotalDecisions: result.Summary.TotalDecisions,
		TotalLines:     result.Summary.TotalLines,
		Decisions:      decisionCounts(result.Summary),
	}, nil
}

// InspectSignatures parses one RBS document and reports its declarations
// and protected regions.
func (s *MergeService) InspectSignatures(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InspectSignaturesInput,
) (*mcp.CallToolResult, InspectSignaturesOutput, error) {
	text, err := resolveText("document", input.Text, input.Path)
	if err != nil {
		return nil, InspectSignaturesOutput{}, err
	}

	doc, err := merge.Inspect(ctx, text, merge.Config{
		MarkerToken: input.MarkerToken,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, InspectSignaturesOutput{}, err
	}

	out := InspectSignaturesOutput{}
	for _, d := range doc.Decls {
		out.Declarations = appendDeclInfo(out.Declarations, d, "")
	}
	for _, r := range doc.Regions {
		info := RegionInfo{StartLine: r.StartLine, EndLine: r.EndLine, Reason: r.Reason}
		for _, d := range r.Contained {
			info.Contained = append(info.Contained, d.Name)
		}
		out.Regions = append(out.Regions, info)
	}
	return nil, out, nil
}

// appendDeclInfo appends the declaration and, depth first, its members
// with their container path.
func appendDeclInfo(out []DeclInfo, d *rbs.Decl, container string) []DeclInfo {
	out = append(out, DeclInfo{
		Kind:      string(d.Kind),
		Name:      d.Name,
		Container: container,
		StartLine: d.StartLine,
		EndLine:   d.EndLine,
	})

	path := d.Name
	if container != "" {
		path = container + "::" + d.Name
	}
	for _, m := range d.Members {
		out = appendDeclInfo(out, m, path)
	}
	return out
}

func decisionCounts(s merge.Summary) []DecisionCount {
	counts := make([]DecisionCount, 0, len(s.ByDecision))
	for decision, n := range s.ByDecision {
		counts = append(counts, DecisionCount{Decision: string(decision), Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Decision < counts[j].Decision })
	return counts
}
