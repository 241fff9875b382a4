package rbs

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Diagnostic is one parser message tied to a source line.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// ParseError carries the diagnostics of a failed parse.
type ParseError struct {
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse failed"
	}
	return fmt.Sprintf("parse failed: %s", e.Diagnostics[0])
}

// ParseResult holds the top-level declarations extracted from one document
// plus the raw text they were extracted from.
type ParseResult struct {
	Decls  []*Decl
	Source string
	Lines  []string
}

// Parser extracts declarations from RBS source text.
// Implementations: ScanParser (default), or any registered backend.
type Parser interface {
	// Parse extracts the ordered top-level declarations of one document.
	// On failure it returns a *ParseError describing every diagnostic.
	Parse(ctx context.Context, source string) (*ParseResult, error)
}

// Registry maps backend names to parser factories. It is constructed once
// at process start and passed by reference to whoever needs to pick a
// backend; registration is idempotent and safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	backends map[string]func() Parser
}

// NewRegistry returns a registry with the default scan backend registered
// under the name "scan".
func NewRegistry() *Registry {
	r := &Registry{backends: make(map[string]func() Parser)}
	r.Register("scan", func() Parser { return NewScanParser() })
	return r
}

// Register adds or replaces a named backend factory.
func (r *Registry) Register(name string, factory func() Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = factory
}

// New constructs a parser by backend name.
func (r *Registry) New(name string) (Parser, error) {
	r.mu.Lock()
	factory, ok := r.backends[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown parser backend: %s", name)
	}
	return factory(), nil
}

// Backends returns the registered backend names, sorted.
func (r *Registry) Backends() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
