package fields

import (
	stdErrors "errors"

	"github.com/traitkit-dev/traitkit/domain/errors"
)

// SchemaBuilder accumulates fields and metadata, then freezes them into an
// immutable Schema. Construction problems are collected as they occur and
// surfaced joined at Build, so call chains stay fluent.
type SchemaBuilder struct {
	name     string
	order    []string
	fields   map[string]*FieldTemplate
	metadata map[string]any
	errs     []error
}

// NewSchemaBuilder starts a builder for a named schema.
func NewSchemaBuilder(name string) *SchemaBuilder {
	return &SchemaBuilder{
		name:     name,
		fields:   make(map[string]*FieldTemplate),
		metadata: make(map[string]any),
	}
}

// AddField binds a template to a field name, applying overrides as a
// derivation. Re-adding a name overwrites the template but keeps the field's
// position.
func (b *SchemaBuilder) AddField(name string, t *FieldTemplate, overrides ...TemplateOption) *SchemaBuilder {
	if t == nil {
		b.errs = append(b.errs, &errors.FieldContractError{Field: name, Reason: "template must not be nil"})
		return b
	}
	f, err := t.CreateField(name, overrides...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	if _, ok := b.fields[f.Name]; !ok {
		b.order = append(b.order, f.Name)
	}
	b.fields[f.Name] = f.Template
	return b
}

// AddFields adds multiple bound fields at once.
func (b *SchemaBuilder) AddFields(fs ...Field) *SchemaBuilder {
	for _, f := range fs {
		b.AddField(f.Name, f.Template)
	}
	return b
}

// WithMetadata merges entries into the schema metadata.
func (b *SchemaBuilder) WithMetadata(m map[string]any) *SchemaBuilder {
	for k, v := range m {
		b.metadata[k] = v
	}
	return b
}

// Extend adopts every field of an existing schema, overwriting collisions.
func (b *SchemaBuilder) Extend(s *Schema) *SchemaBuilder {
	for _, f := range s.Fields() {
		b.AddField(f.Name, f.Template)
	}
	return b
}

// Build freezes the working state into an immutable Schema. Any problems
// collected during construction are returned joined.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.name == "" {
		b.errs = append(b.errs, &errors.FieldContractError{Reason: "schema name must not be empty"})
	}
	if len(b.errs) > 0 {
		return nil, stdErrors.Join(b.errs...)
	}
	return newSchema(b.name, b.order, b.fields, b.metadata), nil
}

// CreateSchema builds a schema from bound fields in one call.
func CreateSchema(name string, fs ...Field) (*Schema, error) {
	return NewSchemaBuilder(name).AddFields(fs...).Build()
}
