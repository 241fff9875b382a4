package rbs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct{}

func (stubParser) Parse(_ context.Context, source string) (*ParseResult, error) {
	return &ParseResult{Source: source}, nil
}

func TestRegistry_Defaults(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"scan"}, reg.Backends())

	p, err := reg.New("scan")
	require.NoError(t, err)
	assert.IsType(t, &ScanParser{}, p)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stub", func() Parser { return stubParser{} })

	assert.Equal(t, []string{"scan", "stub"}, reg.Backends())

	p, err := reg.New("stub")
	require.NoError(t, err)
	assert.IsType(t, stubParser{}, p)

	_, err = reg.New("missing")
	assert.ErrorContains(t, err, "unknown parser backend")
}
