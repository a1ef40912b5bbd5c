package model

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// Instance is one value of a synthesized model. Assignments go through Set,
// which enforces the field's template; reads unwrap the synthesized
// representation, so nullable absence comes back as nil.
type Instance struct {
	model    *Model
	value    reflect.Value // pointer to the synthesized struct
	assigned map[string]struct{}
}

// Model returns the model this instance belongs to.
func (in *Instance) Model() *Model { return in.model }

// Interface returns a pointer to the underlying synthesized struct.
func (in *Instance) Interface() any { return in.value.Interface() }

// Set assigns a field value, enforcing the template: nullability, list
// admission, base-type conformance and the validator. Frozen fields reject
// reassignment after their construction-time value.
func (in *Instance) Set(name string, value any) error {
	tpl, ok := in.model.schema.Field(name)
	if !ok {
		return &errors.ValidationError{Field: name, Reason: "unknown field"}
	}
	if _, was := in.assigned[name]; was && tpl.IsFrozen() {
		return &errors.ValidationError{Field: name, Reason: "field is frozen"}
	}
	if err := tpl.ValidateValue(value); err != nil {
		return fieldError(name, err)
	}
	return in.setField(name, tpl, value)
}

// Get returns a field's current value. Nullable pointers are unwrapped; an
// absent value is nil.
func (in *Instance) Get(name string) (any, error) {
	if _, ok := in.model.index[name]; !ok {
		return nil, &errors.ValidationError{Field: name, Reason: "unknown field"}
	}
	return in.fieldValue(name), nil
}

// Map renders the instance as a field-name-keyed map in schema order
// semantics: unwrapped values, nil for absence.
func (in *Instance) Map() map[string]any {
	out := make(map[string]any, len(in.model.index))
	for _, name := range in.model.schema.FieldNames() {
		out[name] = in.fieldValue(name)
	}
	return out
}

// JSON marshals the instance through the synthesized type's json tags.
func (in *Instance) JSON() ([]byte, error) {
	return json.Marshal(in.value.Interface())
}

// Validate re-runs every field template over the current values.
func (in *Instance) Validate() error {
	for _, name := range in.model.schema.FieldNames() {
		tpl, _ := in.model.schema.Field(name)
		v := in.fieldValue(name)
		if v == nil {
			if tpl.IsNullable() {
				continue
			}
			return &errors.ValidationError{Field: name, Reason: "value must not be nil"}
		}
		if err := tpl.ValidateValue(v); err != nil {
			return fieldError(name, err)
		}
	}
	return nil
}

// setField materializes an already validated value into the struct field.
func (in *Instance) setField(name string, tpl *fields.FieldTemplate, value any) error {
	field := in.value.Elem().Field(in.model.index[name])
	mat, err := materialize(tpl, field.Type(), value)
	if err != nil {
		return fieldError(name, err)
	}
	field.Set(mat)
	in.assigned[name] = struct{}{}
	return nil
}

// fieldValue reads a field, unwrapping the nullable pointer representation.
func (in *Instance) fieldValue(name string) any {
	f := in.value.Elem().Field(in.model.index[name])
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil
		}
		return f.Elem().Interface()
	}
	return f.Interface()
}

// materialize converts a value into the field's synthesized representation:
// strict lists become typed slices, nullable values are wrapped in a fresh
// pointer, loose-list and any-typed fields store the value as-is.
func materialize(tpl *fields.FieldTemplate, fieldType reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(fieldType), nil
	}
	if fieldType.Kind() == reflect.Interface {
		return reflect.ValueOf(value), nil
	}

	core := fieldType
	wrap := false
	if core.Kind() == reflect.Pointer {
		core = core.Elem()
		wrap = true
	}

	var built reflect.Value
	if core.Kind() == reflect.Slice && tpl.IsListable() && tpl.IsStrict() {
		rv := reflect.ValueOf(value)
		if rv.Type().AssignableTo(core) {
			built = rv
		} else {
			out := reflect.MakeSlice(core, rv.Len(), rv.Len())
			for j := 0; j < rv.Len(); j++ {
				ev, ok := fields.CoerceValue(rv.Index(j).Interface(), core.Elem())
				if !ok {
					return reflect.Value{}, &errors.ValidationError{
						Reason: fmt.Sprintf("element %d is not assignable to %s", j, core.Elem()),
						Value:  value,
					}
				}
				out.Index(j).Set(ev)
			}
			built = out
		}
	} else {
		cv, ok := fields.CoerceValue(value, core)
		if !ok {
			return reflect.Value{}, &errors.ValidationError{
				Reason: fmt.Sprintf("%T is not assignable to %s", value, core),
				Value:  value,
			}
		}
		built = cv
	}

	if wrap {
		p := reflect.New(core)
		p.Elem().Set(built)
		return p, nil
	}
	return built, nil
}
