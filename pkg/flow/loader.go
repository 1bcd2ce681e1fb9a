package flow

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed flow.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("flow.schema.json", strings.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("flow.schema.json")
	})
	return schema, schemaErr
}

// Source supplies raw flow documents by id.
type Source interface {
	// Flow returns the raw document bytes (YAML or JSON).
	// It returns ErrFlowNotFound for unknown ids.
	Flow(id string) ([]byte, error)

	// List returns the ids of all available flows.
	List() ([]string, error)
}

// Loader loads, validates, and caches flow documents. A flow is parsed
// once per id for the lifetime of the loader; the cached Flow is shared
// and must be treated as read-only.
type Loader struct {
	source Source

	mu    sync.RWMutex
	cache map[string]*Flow
}

// NewLoader creates a Loader over the given source.
func NewLoader(source Source) *Loader {
	return &Loader{
		source: source,
		cache:  make(map[string]*Flow),
	}
}

// Load returns the validated flow for flowID, cached after the first
// successful load. Documents that fail schema or graph validation are
// never cached, so a corrected source can be retried.
func (l *Loader) Load(flowID string) (*Flow, error) {
	l.mu.RLock()
	cached, ok := l.cache[flowID]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := l.source.Flow(flowID)
	if err != nil {
		return nil, fmt.Errorf("load flow %q: %w", flowID, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load flow %q: %w", flowID, err)
	}

	l.mu.Lock()
	l.cache[flowID] = f
	l.mu.Unlock()
	return f, nil
}

// Stage resolves a stage by flow and stage id.
func (l *Loader) Stage(flowID, stageID string) (*Stage, error) {
	f, err := l.Load(flowID)
	if err != nil {
		return nil, err
	}
	s, ok := f.Stage(stageID)
	if !ok {
		return nil, fmt.Errorf("flow %q: stage %q: %w", flowID, stageID, ErrStageNotFound)
	}
	return s, nil
}

// List returns the flow ids available from the source.
func (l *Loader) List() ([]string, error) {
	return l.source.List()
}

// document is the raw decoded shape of a flow file.
type document struct {
	ID      string `mapstructure:"id"`
	Start   string `mapstructure:"start"`
	Context struct {
		Slots map[string]any `mapstructure:"slots"`
	} `mapstructure:"context"`
	Stages []Stage `mapstructure:"stages"`
}

// Parse decodes and validates a flow document. YAML is the canonical
// format; JSON parses through the same path since YAML is a superset.
func Parse(data []byte) (*Flow, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse flow document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parse flow document: empty document")
	}

	// Normalize through JSON so schema validation and stage decoding
	// see one set of types regardless of the input format.
	normalized, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	s, err := documentSchema()
	if err != nil {
		return nil, fmt.Errorf("compile flow schema: %w", err)
	}
	if err := s.Validate(normalized); err != nil {
		return nil, &GraphError{Problems: []string{err.Error()}}
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &doc,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build flow decoder: %w", err)
	}
	if err := decoder.Decode(normalized); err != nil {
		return nil, fmt.Errorf("decode flow document: %w", err)
	}

	f := &Flow{
		ID:           doc.ID,
		Start:        doc.Start,
		Stages:       doc.Stages,
		InitialSlots: doc.Context.Slots,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func normalize(raw any) (any, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize flow document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("normalize flow document: %w", err)
	}
	return normalized, nil
}
