package merge

import (
	"context"
	"strings"
)

// Result is the outcome of one merge: the final text, the per-statement
// decision log, and its summary.
type Result struct {
	Text    string     `json:"text"`
	Log     []LogEntry `json:"log"`
	Summary Summary    `json:"summary"`
}

// Merger merges a template RBS document into a destination document.
// Destination customizations win by default, template updates can be
// preferred per configuration, and protected regions in either document
// always survive verbatim.
//
// A Merger is a pure function of its two texts and configuration; Merge
// may be called any number of times.
type Merger struct {
	templateText    string
	destinationText string
	cfg             Config
	pipe            *pipeline
}

// New validates the configuration and builds a Merger. An invalid
// preference is a *ConfigError, raised here before any parsing work.
func New(templateText, destinationText string, cfg Config) (*Merger, error) {
	cfg.fillDefaults()
	pref, err := resolvePreference(cfg.Preference)
	if err != nil {
		return nil, err
	}

	return &Merger{
		templateText:    templateText,
		destinationText: destinationText,
		cfg:             cfg,
		pipe: &pipeline{
			cfg:  &cfg,
			sig:  &signatureComputer{override: cfg.Signature},
			pref: pref,
		},
	}, nil
}

// Merge returns the merged text.
func (m *Merger) Merge(ctx context.Context) (string, error) {
	res, err := m.MergeResult(ctx)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// MergeResult returns the merged text together with the decision log and
// its summary.
func (m *Merger) MergeResult(ctx context.Context) (*Result, error) {
	tmpl, dest, err := m.analyze(ctx)
	if err != nil {
		return nil, err
	}

	lines, log := m.pipe.mergeStatements(tmpl, dest, 1)

	text := strings.Join(lines, "\n")
	if text != "" {
		text += "\n"
	}

	return &Result{Text: text, Log: log, Summary: summarize(log)}, nil
}

// analyze parses and region-scans both documents. Parse failures are
// wrapped per side so the caller can tell which file is broken.
func (m *Merger) analyze(ctx context.Context) (tmpl, dest *Document, err error) {
	tmplRes, err := m.cfg.Parser.Parse(ctx, m.templateText)
	if err != nil {
		return nil, nil, &TemplateParseError{Err: err}
	}
	destRes, err := m.cfg.Parser.Parse(ctx, m.destinationText)
	if err != nil {
		return nil, nil, &DestinationParseError{Err: err}
	}

	tmpl, err = newDocument(tmplRes, m.cfg.MarkerToken, m.cfg.Logger.Named("template"))
	if err != nil {
		return nil, nil, err
	}
	dest, err = newDocument(destRes, m.cfg.MarkerToken, m.cfg.Logger.Named("destination"))
	if err != nil {
		return nil, nil, err
	}
	return tmpl, dest, nil
}

// Inspect parses one document and returns its analyzed form. It backs the
// inspection tooling and is not part of the merge path.
func Inspect(ctx context.Context, text string, cfg Config) (*Document, error) {
	cfg.fillDefaults()
	res, err := cfg.Parser.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return newDocument(res, cfg.MarkerToken, cfg.Logger)
}
