// Package schema validates tool-call arguments against JSON Schema documents.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrUnknownSchema indicates no schema was registered under a name
var ErrUnknownSchema = errors.New("unknown schema")

// Validator validates argument maps against JSON Schema documents.
// Compiled schemas are cached keyed by their raw bytes; named documents
// can be registered up front and validated by name.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
	named map[string]json.RawMessage
}

// NewValidator creates a new Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[string]*jsonschema.Schema),
		named: make(map[string]json.RawMessage),
	}
}

// Register stores doc under name and compiles it eagerly so a broken
// document fails at startup rather than on the first call.
func (v *Validator) Register(name string, doc json.RawMessage) error {
	if _, err := v.compile(doc); err != nil {
		return fmt.Errorf("schema %q: %w", name, err)
	}
	v.mu.Lock()
	v.named[name] = doc
	v.mu.Unlock()
	return nil
}

// Schema returns the document registered under name.
func (v *Validator) Schema(name string) (json.RawMessage, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.named[name]
	return doc, ok
}

// ValidateNamed validates payload against the document registered under name.
func (v *Validator) ValidateNamed(name string, payload map[string]any) error {
	doc, ok := v.Schema(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return v.Validate(doc, payload)
}

// Validate validates payload against the given JSON Schema document.
// Returns nil if valid, or an error describing the validation failures.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	if len(schemaDoc) == 0 || string(schemaDoc) == "{}" || string(schemaDoc) == "null" {
		return nil
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	// Round-trip through JSON so Go-typed values (int, []string) validate
	// the same way decoded JSON does.
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return compiled.Validate(doc)
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	var schemaMap any
	if err := json.Unmarshal(schemaDoc, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaMap); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}

// Summary flattens a validation error into a single line.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(err.Error(), "\n")
	parts := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "-"))
		if l == "" || strings.HasPrefix(l, "jsonschema validation failed") {
			continue
		}
		parts = append(parts, l)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(err.Error())
	}
	return strings.Join(parts, "; ")
}
