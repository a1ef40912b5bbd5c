package model

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// Model wraps one synthesized struct type together with the schema that
// produced it. Models are immutable and safe for concurrent use; instances
// are not.
type Model struct {
	schema       *fields.Schema
	goType       reflect.Type
	index        map[string]int
	behaviors    []string
	capabilities []string
}

// GoType returns the synthesized struct type.
func (m *Model) GoType() reflect.Type { return m.goType }

// Schema returns the schema the model was built from.
func (m *Model) Schema() *fields.Schema { return m.schema }

// Behaviors returns the declared callable contract members.
func (m *Model) Behaviors() []string {
	return append([]string(nil), m.behaviors...)
}

// Capabilities returns the capability names the model was built for.
func (m *Model) Capabilities() []string {
	return append([]string(nil), m.capabilities...)
}

// Implements reports whether the model was built for the capability.
func (m *Model) Implements(name string) bool {
	for _, c := range m.capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// New constructs an instance from explicit values. Every required field must
// be present; defaults fill the rest. Unknown names are rejected.
func (m *Model) New(values map[string]any) (*Instance, error) {
	for name := range values {
		if _, ok := m.index[name]; !ok {
			return nil, &errors.ValidationError{
				Field:  name,
				Reason: "unknown field",
			}
		}
	}
	return m.construct(values)
}

// FromMap constructs an instance from a decoded map, ignoring unknown names.
// Required fields must still be present.
func (m *Model) FromMap(values map[string]any) (*Instance, error) {
	known := make(map[string]any, len(values))
	for name, v := range values {
		if _, ok := m.index[name]; ok {
			known[name] = v
		}
	}
	return m.construct(known)
}

// FromJSON decodes a JSON object into a new instance. Values are parsed
// through the synthesized type, so fields such as timestamps accept their
// JSON encodings; validators run on the decoded values and defaults fill
// absent fields.
func (m *Model) FromJSON(data []byte) (*Instance, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &errors.ValidationError{Err: err, Reason: "invalid JSON document"}
	}

	ptr := reflect.New(m.goType)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, &errors.ValidationError{Err: err, Reason: "JSON does not match the model shape"}
	}

	in := &Instance{
		model:    m,
		value:    ptr,
		assigned: make(map[string]struct{}, len(m.index)),
	}

	var missing []string
	for _, name := range m.schema.FieldNames() {
		tpl, _ := m.schema.Field(name)
		if rawValue, present := raw[name]; present {
			if string(rawValue) == "null" && !tpl.IsNullable() {
				return nil, &errors.ValidationError{Field: name, Reason: "value must not be nil"}
			}
			v := in.fieldValue(name)
			if err := tpl.ValidateValue(v); err != nil {
				return nil, fieldError(name, err)
			}
			in.assigned[name] = struct{}{}
			continue
		}
		def, ok := tpl.ApplyDefault()
		if !ok {
			missing = append(missing, name)
			continue
		}
		if err := in.setField(name, tpl, def); err != nil {
			return nil, err
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}
	return in, nil
}

// construct builds an instance from known names only.
func (m *Model) construct(values map[string]any) (*Instance, error) {
	in := &Instance{
		model:    m,
		value:    reflect.New(m.goType),
		assigned: make(map[string]struct{}, len(m.index)),
	}

	var missing []string
	for _, name := range m.schema.FieldNames() {
		tpl, _ := m.schema.Field(name)
		if v, ok := values[name]; ok {
			if err := tpl.ValidateValue(v); err != nil {
				return nil, fieldError(name, err)
			}
			if err := in.setField(name, tpl, v); err != nil {
				return nil, err
			}
			continue
		}
		def, ok := tpl.ApplyDefault()
		if !ok {
			missing = append(missing, name)
			continue
		}
		if err := in.setField(name, tpl, def); err != nil {
			return nil, err
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}
	return in, nil
}

func missingFieldsError(missing []string) error {
	sort.Strings(missing)
	return &errors.ValidationError{
		Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
	}
}

func fieldError(name string, err error) error {
	var ve *errors.ValidationError
	if stdErrors.As(err, &ve) {
		return &errors.ValidationError{
			Err:    ve.Err,
			Field:  name,
			Reason: ve.Reason,
			Value:  ve.Value,
		}
	}
	return &errors.ValidationError{Err: err, Field: name}
}
