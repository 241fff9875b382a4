package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UnknownParserBackend(t *testing.T) {
	err := run([]string{"-parser", "treesitter"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parser backend")
	assert.Contains(t, err.Error(), "scan")
}

func TestRun_SinglePairMerge(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.rbs")
	destinationPath := filepath.Join(dir, "destination.rbs")
	outputPath := filepath.Join(dir, "merged.rbs")
	require.NoError(t, os.WriteFile(templatePath, []byte("type t = String\n"), 0o644))
	require.NoError(t, os.WriteFile(destinationPath, []byte("type t = Integer\n"), 0o644))

	err := run([]string{
		"-parser", "scan",
		"-template", templatePath,
		"-destination", destinationPath,
		"-output", outputPath,
	})
	require.NoError(t, err)

	merged, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "type t = Integer\n", string(merged))
}
