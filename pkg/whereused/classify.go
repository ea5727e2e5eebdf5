package whereused

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// OutcomeStatus classifies one strategy attempt.
type OutcomeStatus string

const (
	StatusHit   OutcomeStatus = "HIT"
	StatusEmpty OutcomeStatus = "EMPTY"
	StatusError OutcomeStatus = "ERROR"
)

// Markers configures what counts as usage data in a response body.
// Each list holds regular expressions for one response kind; a body is a hit
// when it is at least MinBodyLength bytes (whitespace trimmed) and any
// pattern of its kind matches.
type Markers struct {
	MinBodyLength int      `yaml:"minBodyLength"`
	XML           []string `yaml:"xml"`
	JSON          []string `yaml:"json"`
	Plain         []string `yaml:"plain"`
}

// DefaultMarkers returns the built-in marker set.
// The XML markers require an element, not the empty container
// (referencedObject vs referencedObjects).
func DefaultMarkers() Markers {
	return Markers{
		MinBodyLength: 40,
		XML: []string{
			`<(?:[\w-]+:)?referencedObject[\s/>]`,
			`<(?:[\w-]+:)?objectReference[\s/>]`,
		},
		JSON: []string{
			`"(?:referencedObjects|references|results|usages)"\s*:\s*\[\s*\{`,
		},
		Plain: []string{
			`(?i)\bused\s+(?:in|by)\b`,
			`(?i)\breferenced\s+(?:in|by)\b`,
		},
	}
}

// LoadMarkers reads a YAML marker file. Sections missing from the file keep
// their default patterns.
func LoadMarkers(path string) (Markers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Markers{}, fmt.Errorf("reading markers file: %w", err)
	}
	m := DefaultMarkers()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Markers{}, fmt.Errorf("parsing markers file %s: %w", path, err)
	}
	if m.MinBodyLength < 0 {
		return Markers{}, fmt.Errorf("markers file %s: minBodyLength must not be negative", path)
	}
	return m, nil
}

// Classifier decides HIT or EMPTY for successful responses.
type Classifier struct {
	minBodyLength int
	patterns      map[ResponseKind][]*regexp.Regexp
}

// Compile turns the marker set into a Classifier.
func (m Markers) Compile() (*Classifier, error) {
	c := &Classifier{
		minBodyLength: m.MinBodyLength,
		patterns:      make(map[ResponseKind][]*regexp.Regexp),
	}
	var errs []error
	for kind, exprs := range map[ResponseKind][]string{KindXML: m.XML, KindJSON: m.JSON, KindPlain: m.Plain} {
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s marker %q: %w", kind, expr, err))
				continue
			}
			c.patterns[kind] = append(c.patterns[kind], re)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

var defaultClassifier = mustCompile(DefaultMarkers())

func mustCompile(m Markers) *Classifier {
	c, err := m.Compile()
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultClassifier returns the classifier for DefaultMarkers.
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// Classify returns StatusHit when body carries recognisable usage data for
// kind, StatusEmpty otherwise. Non-empty bodies without a marker are EMPTY.
func (c *Classifier) Classify(kind ResponseKind, body []byte) OutcomeStatus {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || len(trimmed) < c.minBodyLength {
		return StatusEmpty
	}
	for _, re := range c.patterns[kind] {
		if re.Match(trimmed) {
			return StatusHit
		}
	}
	return StatusEmpty
}
