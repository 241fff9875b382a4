package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSignatures_InlineTexts(t *testing.T) {
	svc := NewMergeService(nil)

	_, out, err := svc.MergeSignatures(context.Background(), nil, MergeSignaturesInput{
		TemplateText: "type t = String\ntype extra = Integer\n",
		DestinationText: `type t = Integer
# rbs-merge:freeze
type local = Float
# rbs-merge:unfreeze
`,
		AddTemplateOnly: true,
	})
	require.NoError(t, err)

	assert.Contains(t, out.MergedText, "type t = Integer")
	assert.Contains(t, out.MergedText, "type extra = Integer")
	assert.Contains(t, out.MergedText, "# rbs-merge:freeze")
	assert.Equal(t, 3, out.TotalDecisions)
	assert.NotEmpty(t, out.Decisions)
}

func TestMergeSignatures_PathInputs(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.rbs")
	destinationPath := filepath.Join(dir, "destination.rbs")
	require.NoError(t, os.WriteFile(templatePath, []byte("type t = String\n"), 0o644))
	require.NoError(t, os.WriteFile(destinationPath, []byte("type t = Integer\n"), 0o644))

	svc := NewMergeService(nil)
	_, out, err := svc.MergeSignatures(context.Background(), nil, MergeSignaturesInput{
		TemplatePath:    templatePath,
		DestinationPath: destinationPath,
		Preference:      "template",
	})
	require.NoError(t, err)
	assert.Equal(t, "type t = String\n", out.MergedText)
}

func TestMergeSignatures_InputValidation(t *testing.T) {
	svc := NewMergeService(nil)

	_, _, err := svc.MergeSignatures(context.Background(), nil, MergeSignaturesInput{
		DestinationText: "type t = String\n",
	})
	assert.ErrorContains(t, err, "template is required")

	_, _, err = svc.MergeSignatures(context.Background(), nil, MergeSignaturesInput{
		TemplateText:    "type t = String\n",
		TemplatePath:    "also-a-path.rbs",
		DestinationText: "type t = String\n",
	})
	assert.ErrorContains(t, err, "not both")

	_, _, err = svc.MergeSignatures(context.Background(), nil, MergeSignaturesInput{
		TemplateText:    "type t = String\n",
		DestinationText: "type t = String\n",
		Preference:      "upstream",
	})
	assert.ErrorContains(t, err, "unrecognized side")
}

func TestInspectSignatures(t *testing.T) {
	svc := NewMergeService(nil)

	_, out, err := svc.InspectSignatures(context.Background(), nil, InspectSignaturesInput{
		Text: `class Foo
  def bar: () -> void
end
# rbs-merge:freeze pinned
type cfg = String
# rbs-merge:unfreeze
`,
	})
	require.NoError(t, err)

	// Members flatten into the declaration list with their container path.
	require.Len(t, out.Declarations, 3)
	assert.Equal(t, "class", out.Declarations[0].Kind)
	assert.Equal(t, "Foo", out.Declarations[0].Name)
	assert.Empty(t, out.Declarations[0].Container)
	assert.Equal(t, "bar", out.Declarations[1].Name)
	assert.Equal(t, "Foo", out.Declarations[1].Container)
	assert.Equal(t, "cfg", out.Declarations[2].Name)
	assert.Empty(t, out.Declarations[2].Container)

	require.Len(t, out.Regions, 1)
	assert.Equal(t, 4, out.Regions[0].StartLine)
	assert.Equal(t, 6, out.Regions[0].EndLine)
	assert.Equal(t, "pinned", out.Regions[0].Reason)
	assert.Equal(t, []string{"cfg"}, out.Regions[0].Contained)
}

func TestNewMergeMCPServer(t *testing.T) {
	server := NewMergeMCPServer(NewMergeService(nil))
	assert.NotNil(t, server)
}
