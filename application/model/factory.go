// Package model synthesizes concrete runtime types from schemas. The factory
// produces one Go struct type per distinct schema content, records the new
// type's contract members for structural validation, and wraps it in a Model
// that constructs template-enforcing instances.
package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
	"github.com/traitkit-dev/traitkit/internal/naming"
	"github.com/traitkit-dev/traitkit/internal/synth"
)

// Factory builds and caches synthesized models. Synthesis is serialized, so
// concurrent builds of the same content observe one cached Model.
type Factory struct {
	mu    sync.Mutex
	cache map[string]*Model
}

// NewFactory creates an empty model factory.
func NewFactory() *Factory {
	return &Factory{cache: make(map[string]*Model)}
}

// BuildOption configures a model build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	behaviors    []string
	capabilities []string
}

// WithBehaviors declares callable contract members the model exposes. They
// join the synthesized type's recorded member set.
func WithBehaviors(names ...string) BuildOption {
	return func(c *buildConfig) {
		c.behaviors = append(c.behaviors, names...)
	}
}

// WithCapabilities records the capability names the model was built for.
func WithCapabilities(names ...string) BuildOption {
	return func(c *buildConfig) {
		c.capabilities = append(c.capabilities, names...)
	}
}

// Build synthesizes a struct type for the schema and wraps it in a Model.
// Repeated builds with content-equal schemas and equal options return the
// cached Model. Field order follows the schema; exported field names derive
// from the snake_case field names; json tags carry the schema names, with
// omitempty on nullable fields.
func (f *Factory) Build(s *fields.Schema, opts ...BuildOption) (*Model, error) {
	if s == nil {
		return nil, fmt.Errorf("schema must not be nil")
	}
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.behaviors = dedupe(cfg.behaviors)
	cfg.capabilities = dedupe(cfg.capabilities)

	key := cacheKey(s, cfg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.cache[key]; ok {
		return m, nil
	}

	m, err := synthesize(s, cfg)
	if err != nil {
		return nil, err
	}
	f.cache[key] = m
	return m, nil
}

// Reset drops every cached model.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]*Model)
}

func cacheKey(s *fields.Schema, cfg buildConfig) string {
	behaviors := append([]string(nil), cfg.behaviors...)
	sort.Strings(behaviors)
	capabilities := append([]string(nil), cfg.capabilities...)
	sort.Strings(capabilities)
	return s.Hash() + "|" + strings.Join(behaviors, ",") + "|" + strings.Join(capabilities, ",")
}

func synthesize(s *fields.Schema, cfg buildConfig) (*Model, error) {
	names := s.FieldNames()
	structFields := make([]reflect.StructField, 0, len(names))
	index := make(map[string]int, len(names))
	exportedBy := make(map[string]string, len(names))

	for i, name := range names {
		tpl, _ := s.Field(name)
		exported := naming.ExportedName(name)
		if exported == "" {
			return nil, &errors.FieldContractError{
				Field:  name,
				Reason: "field name yields no exported Go identifier",
			}
		}
		if prev, ok := exportedBy[exported]; ok {
			return nil, &errors.FieldContractError{
				Field:  name,
				Reason: fmt.Sprintf("exported name %s collides with field %q", exported, prev),
			}
		}
		exportedBy[exported] = name

		tag := fmt.Sprintf(`json:"%s"`, name)
		if tpl.IsNullable() {
			tag = fmt.Sprintf(`json:"%s,omitempty"`, name)
		}
		structFields = append(structFields, reflect.StructField{
			Name: exported,
			Type: tpl.GoType(),
			Tag:  reflect.StructTag(tag),
		})
		index[name] = i
	}

	goType := reflect.StructOf(structFields)

	members := append(names, cfg.behaviors...)
	if existing, ok := synth.MembersOf(goType); ok {
		for m := range existing {
			members = append(members, m)
		}
	}
	synth.Record(goType, dedupe(members))

	return &Model{
		schema:       s,
		goType:       goType,
		index:        index,
		behaviors:    cfg.behaviors,
		capabilities: cfg.capabilities,
	}, nil
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
