package mcptools

// --- MCP Tool Types for the merge server mode (--serve-mcp) ---
// These tools let an agent merge and inspect RBS signature files through
// structured calls instead of shelling out to the CLI.

// MergeSignaturesInput is the input for the merge_signatures MCP tool.
// Template and destination may each be given inline or as a file path.
type MergeSignaturesInput struct {
	TemplateText    string `json:"templateText,omitempty" jsonschema:"template RBS source (inline)"`
	TemplatePath    string `json:"templatePath,omitempty" jsonschema:"path to the template RBS file"`
	DestinationText string `json:"destinationText,omitempty" jsonschema:"destination RBS source (inline)"`
	DestinationPath string `json:"destinationPath,omitempty" jsonschema:"path to the destination RBS file"`

	Preference       string            `json:"preference,omitempty" jsonschema:"global winning side: template or destination (default destination)"`
	PreferenceByKind map[string]string `json:"preferenceByKind,omitempty" jsonschema:"winning side per declaration kind; must include a 'default' key"`
	AddTemplateOnly  bool              `json:"addTemplateOnly,omitempty" jsonschema:"append template-only declarations to the output"`
	MarkerToken      string            `json:"markerToken,omitempty" jsonschema:"protected-region comment token (default rbs-merge)"`
}

// DecisionCount is one decision kind with its tally.
type DecisionCount struct {
	Decision string `json:"decision"`
	Count    int    `json:"count"`
}

// MergeSignaturesOutput is the result of the merge_signatures MCP tool.
type MergeSignaturesOutput struct {
	MergedText     string          `json:"mergedText"`
	TotalDecisions int             `json:"totalDecisions"`
	TotalLines     int             `json:"totalLines"`
	Decisions      []DecisionCount `json:"decisions"`
}

// InspectSignaturesInput is the input for the inspect_signatures MCP tool.
type InspectSignaturesInput struct {
	Text        string `json:"text,omitempty" jsonschema:"RBS source (inline)"`
	Path        string `json:"path,omitempty" jsonschema:"path to an RBS file"`
	MarkerToken string `json:"markerToken,omitempty" jsonschema:"protected-region comment token (default rbs-merge)"`
}

// DeclInfo describes one parsed declaration. Nested members are reported
// as their own entries with Container set to the enclosing path, keeping
// the type flat for json schema inference.
type DeclInfo struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Container string `json:"container,omitempty" jsonschema:"::-joined path of the enclosing containers, empty at top level"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// RegionInfo describes one protected region.
type RegionInfo struct {
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Reason    string   `json:"reason,omitempty"`
	Contained []string `json:"contained,omitempty"` // names of wrapped declarations
}

// InspectSignaturesOutput is the result of the inspect_signatures MCP tool.
type InspectSignaturesOutput struct {
	Declarations []DeclInfo   `json:"declarations"`
	Regions      []RegionInfo `json:"regions"`
}
