// Package schema exports field schemas and synthesized models as standard
// JSON Schema (Draft 2020-12) documents.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/traitkit-dev/traitkit/application/model"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// Generator renders JSON Schema documents from Go values, synthesized models
// and field schemas.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator creates a generator with inline struct expansion.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			ExpandedStruct: true, // Expand struct definitions inline
			// Synthesized struct types are unnamed; the reflector needs a
			// definition name to expand the root schema from.
			Namer: func(t reflect.Type) string {
				if t.Kind() == reflect.Struct && t.Name() == "" {
					return "Synthesized"
				}
				return ""
			},
		},
	}
}

// ForType reflects a JSON schema from a Go struct value.
func (g *Generator) ForType(v any) (*jsonschema.Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("value must not be nil")
	}
	return g.reflector.Reflect(v), nil
}

// ForModel reflects the model's synthesized type and overlays the field
// schema's titles, descriptions and required list on the result.
func (g *Generator) ForModel(m *model.Model) (*jsonschema.Schema, error) {
	if m == nil {
		return nil, fmt.Errorf("model must not be nil")
	}
	out := g.reflector.ReflectFromType(m.GoType())
	s := m.Schema()
	out.Title = s.Name()

	if out.Properties != nil {
		for _, name := range s.FieldNames() {
			prop, ok := out.Properties.Get(name)
			if !ok {
				continue
			}
			tpl, _ := s.Field(name)
			if d := tpl.Description(); d != "" {
				prop.Description = d
			}
			if title := tpl.Title(); title != "" {
				prop.Title = title
			}
			if def, ok := tpl.Default(); ok && def != nil {
				prop.Default = def
			}
		}
	}
	out.Required = s.RequiredFields()
	return out, nil
}

// ForSchema builds an object schema directly from a field schema: ordered
// properties, JSON type mapping, defaults and the required list.
func (g *Generator) ForSchema(s *fields.Schema) (*jsonschema.Schema, error) {
	if s == nil {
		return nil, fmt.Errorf("schema must not be nil")
	}
	out := &jsonschema.Schema{
		Type:                 "object",
		Title:                s.Name(),
		Properties:           orderedmap.New[string, *jsonschema.Schema](),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, name := range s.FieldNames() {
		tpl, _ := s.Field(name)
		out.Properties.Set(name, propertyFor(tpl))
	}
	out.Required = s.RequiredFields()
	return out, nil
}

// JSON renders a schema as stable indented output.
func (g *Generator) JSON(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// propertyFor maps one field template to a property schema.
func propertyFor(tpl *fields.FieldTemplate) *jsonschema.Schema {
	prop := baseProperty(tpl.BaseType())

	if tpl.IsListable() {
		list := &jsonschema.Schema{Type: "array", Items: prop}
		if tpl.IsStrict() {
			prop = list
		} else {
			prop = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{baseProperty(tpl.BaseType()), list}}
		}
	}
	if tpl.IsNullable() {
		prop = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{prop, {Type: "null"}}}
	}

	if d := tpl.Description(); d != "" {
		prop.Description = d
	}
	if title := tpl.Title(); title != "" {
		prop.Title = title
	}
	if def, ok := tpl.Default(); ok && def != nil {
		prop.Default = def
	}
	return prop
}

// baseProperty maps a Go type to its JSON Schema form.
func baseProperty(t reflect.Type) *jsonschema.Schema {
	if t == reflect.TypeOf(time.Time{}) {
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	}
	switch t.Kind() {
	case reflect.String:
		return &jsonschema.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Map, reflect.Struct:
		return &jsonschema.Schema{Type: "object"}
	case reflect.Slice, reflect.Array:
		return &jsonschema.Schema{Type: "array", Items: baseProperty(t.Elem())}
	default:
		return &jsonschema.Schema{}
	}
}
