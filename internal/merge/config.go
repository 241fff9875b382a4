package merge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// Side names one of the two input documents.
type Side string

const (
	SideTemplate    Side = "template"
	SideDestination Side = "destination"
)

// DefaultMarkerToken is the comment token that opens and closes protected
// regions: `# rbs-merge:freeze` ... `# rbs-merge:unfreeze`.
const DefaultMarkerToken = "rbs-merge"

// PreferenceDefaultKey is the mandatory fallback key of a per-kind
// preference map.
const PreferenceDefaultKey = "default"

// Preference selects which side wins a matched, non-identical,
// non-protected pair. Either Global is set, or PerKind maps declaration
// kinds (plus the mandatory "default" key) to sides. The zero value means
// "destination wins everywhere".
type Preference struct {
	Global  Side
	PerKind map[string]Side
}

// GlobalPreference builds a preference where one side wins for every kind.
func GlobalPreference(side Side) Preference {
	return Preference{Global: side}
}

// KindPreference builds a per-kind preference. The map must contain the
// "default" key; validation happens at Merger construction.
func KindPreference(perKind map[string]Side) Preference {
	return Preference{PerKind: perKind}
}

// resolvePreference validates a preference and compiles it into a lookup
// function. Invalid values surface as *ConfigError.
func resolvePreference(p Preference) (func(rbs.DeclKind) Side, error) {
	validSide := func(s Side) bool {
		return s == SideTemplate || s == SideDestination
	}

	if p.PerKind != nil {
		if p.Global != "" {
			return nil, &ConfigError{Reason: "preference: global side and per-kind map are mutually exclusive"}
		}
		fallback, ok := p.PerKind[PreferenceDefaultKey]
		if !ok {
			return nil, &ConfigError{Reason: `preference: per-kind map is missing the "default" key`}
		}
		for kind, side := range p.PerKind {
			if !validSide(side) {
				return nil, &ConfigError{Reason: fmt.Sprintf("preference: unrecognized side %q for kind %q", side, kind)}
			}
		}
		return func(kind rbs.DeclKind) Side {
			if side, ok := p.PerKind[string(kind)]; ok {
				return side
			}
			return fallback
		}, nil
	}

	switch p.Global {
	case "":
		return func(rbs.DeclKind) Side { return SideDestination }, nil
	case SideTemplate, SideDestination:
		side := p.Global
		return func(rbs.DeclKind) Side { return side }, nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("preference: unrecognized side %q", p.Global)}
	}
}

// Config holds the options of one Merger.
type Config struct {
	// Preference decides the winner for matched pairs that are not
	// identical and not protected. Defaults to destination.
	Preference Preference

	// AddTemplateOnly controls whether template-only declarations are
	// appended to the output. Default false: they are dropped.
	AddTemplateOnly bool

	// MarkerToken is the comment token of protected-region markers.
	// Defaults to DefaultMarkerToken.
	MarkerToken string

	// Signature optionally overrides signature computation. See
	// SignatureFunc.
	Signature SignatureFunc

	// MaxRecursionDepth bounds recursive container merging. Zero means
	// unlimited. Past the limit a matched container pair is taken
	// wholesale from the preferred side.
	MaxRecursionDepth int

	// Parser is the backend used for both documents. Defaults to the scan
	// backend.
	Parser rbs.Parser

	// Logger receives recoverable warnings (unmatched freeze markers).
	// Defaults to a nop logger.
	Logger *zap.Logger
}

func (c *Config) fillDefaults() {
	if c.MarkerToken == "" {
		c.MarkerToken = DefaultMarkerToken
	}
	if c.Parser == nil {
		c.Parser = rbs.NewScanParser()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
