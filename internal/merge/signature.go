package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// Signature is the identity tuple used to match declarations between the
// two documents. A nil Signature means "unmatchable": the declaration is
// never aligned and always passes through one-sided.
type Signature []string

// Key returns a map-key form of the signature.
func (s Signature) Key() string {
	return strings.Join(s, "\x1f")
}

// SignatureOutcome is what a SignatureFunc decided for one declaration.
type SignatureOutcome int

const (
	// SigDefault falls through to the built-in signature computation.
	SigDefault SignatureOutcome = iota
	// SigCustom uses the returned signature as-is.
	SigCustom
	// SigUnmatchable excludes the declaration from alignment entirely.
	SigUnmatchable
)

// SignatureFunc lets the caller override signature computation for
// individual declarations.
type SignatureFunc func(*rbs.Decl) (Signature, SignatureOutcome)

// signatureComputer derives signatures, consulting the caller override
// first.
type signatureComputer struct {
	override SignatureFunc
}

// declSignature returns the identity tuple of a declaration, or nil when
// the declaration is unmatchable.
func (c *signatureComputer) declSignature(d *rbs.Decl) Signature {
	if c.override != nil {
		sig, outcome := c.override(d)
		switch outcome {
		case SigCustom:
			return sig
		case SigUnmatchable:
			return nil
		}
	}
	return defaultSignature(d)
}

// defaultSignature is a pure function of kind and identifying fields.
func defaultSignature(d *rbs.Decl) Signature {
	switch d.Kind {
	case rbs.KindMethod:
		return Signature{"method", d.Name, string(d.MethodKind)}
	case rbs.KindMethodAlias:
		return Signature{"alias", d.Name, d.OldName}
	case rbs.KindUnknown:
		// The starting line keeps unclassified nodes from ever matching
		// each other spuriously.
		return Signature{"unknown", d.Name, strconv.Itoa(d.StartLine)}
	default:
		return Signature{string(d.Kind), d.Name}
	}
}

// regionSignature is the synthetic signature of a protected region: a tag
// plus a hash of the region's whitespace-normalized content.
func (c *signatureComputer) regionSignature(r *ProtectedRegion, lines []string) Signature {
	content := normalizeBlock(lines[r.StartLine-1 : r.EndLine])
	sum := sha256.Sum256([]byte(content))
	return Signature{"protected-region", hex.EncodeToString(sum[:8])}
}

// normalizeBlock trims trailing whitespace per line, joins, and strips the
// edges of the joined block. Used both for region hashing and for the
// "textually identical" resolution rule.
func normalizeBlock(lines []string) string {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(trimmed, "\n"))
}
