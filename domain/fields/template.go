// Package fields implements the field template and schema layer of the
// capability engine: reusable, immutable field descriptions, ordered
// content-addressable schemas, and a fluent schema builder.
package fields

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/traitkit-dev/traitkit/domain/errors"
)

// Validator checks a single field value. A nil return means the value is
// acceptable.
type Validator func(value any) error

// Factory produces a fresh default value each time it is invoked.
type Factory func() any

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// FieldTemplate describes one field: base type, default value or default
// factory (never both), nullability, list handling, an optional validator and
// descriptive metadata. Templates are immutable; every derivation returns a
// new template.
type FieldTemplate struct {
	baseType    reflect.Type
	defaultVal  any
	hasDefault  bool
	factory     Factory
	nullable    bool
	listable    bool
	strict      bool
	frozen      bool
	validator   Validator
	description string
	title       string
	meta        map[string]any
}

// TemplateOption configures a template during construction or derivation.
type TemplateOption func(*FieldTemplate)

// WithDefault sets a literal default value.
func WithDefault(v any) TemplateOption {
	return func(t *FieldTemplate) {
		t.defaultVal = v
		t.hasDefault = true
	}
}

// WithDefaultFactory sets a factory evaluated per use. Passing nil clears a
// previously set factory.
func WithDefaultFactory(f Factory) TemplateOption {
	return func(t *FieldTemplate) {
		t.factory = f
	}
}

// WithValidator attaches a validator run against present values.
func WithValidator(v Validator) TemplateOption {
	return func(t *FieldTemplate) {
		t.validator = v
	}
}

// WithDescription sets the human-readable field description.
func WithDescription(s string) TemplateOption {
	return func(t *FieldTemplate) {
		t.description = s
	}
}

// WithTitle sets the human-readable field title.
func WithTitle(s string) TemplateOption {
	return func(t *FieldTemplate) {
		t.title = s
	}
}

// WithFrozen marks the field immutable after its first assignment.
func WithFrozen(frozen bool) TemplateOption {
	return func(t *FieldTemplate) {
		t.frozen = frozen
	}
}

// WithNullable toggles admission of an explicit absence value.
func WithNullable(nullable bool) TemplateOption {
	return func(t *FieldTemplate) {
		t.nullable = nullable
	}
}

// WithListable toggles admission of sequences of the base type. In strict
// mode only sequences are admitted; otherwise a bare scalar also passes.
func WithListable(listable, strict bool) TemplateOption {
	return func(t *FieldTemplate) {
		t.listable = listable
		t.strict = strict
	}
}

// WithMeta attaches one custom metadata entry, replacing any previous value
// for the key.
func WithMeta(key string, value any) TemplateOption {
	return func(t *FieldTemplate) {
		if t.meta == nil {
			t.meta = make(map[string]any)
		}
		t.meta[key] = value
	}
}

// NewTemplate creates a template for the given base type. Supplying both a
// default value and a default factory is a FieldContractError.
func NewTemplate(base reflect.Type, opts ...TemplateOption) (*FieldTemplate, error) {
	if base == nil {
		return nil, &errors.FieldContractError{Reason: "base type must not be nil"}
	}
	t := &FieldTemplate{baseType: base}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.checkContract(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTemplate is NewTemplate that panics on contract violations. Intended
// for package-level template catalogs.
func MustTemplate(base reflect.Type, opts ...TemplateOption) *FieldTemplate {
	t, err := NewTemplate(base, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// TemplateOf creates a template whose base type is T.
func TemplateOf[T any](opts ...TemplateOption) (*FieldTemplate, error) {
	return NewTemplate(reflect.TypeFor[T](), opts...)
}

// MustTemplateOf is TemplateOf that panics on contract violations.
func MustTemplateOf[T any](opts ...TemplateOption) *FieldTemplate {
	return MustTemplate(reflect.TypeFor[T](), opts...)
}

func (t *FieldTemplate) checkContract() error {
	if t.hasDefault && t.factory != nil {
		return &errors.FieldContractError{Reason: "cannot set both default and default factory"}
	}
	return nil
}

func (t *FieldTemplate) clone() *FieldTemplate {
	c := *t
	if t.meta != nil {
		c.meta = make(map[string]any, len(t.meta))
		for k, v := range t.meta {
			c.meta[k] = v
		}
	}
	return &c
}

// With derives a new template with the given options applied. The receiver is
// never modified.
func (t *FieldTemplate) With(opts ...TemplateOption) (*FieldTemplate, error) {
	c := t.clone()
	for _, opt := range opts {
		opt(c)
	}
	if err := c.checkContract(); err != nil {
		return nil, err
	}
	return c, nil
}

// AsNullable derives a template that admits an explicit absence value (nil).
// The default becomes present-nil, any default factory is dropped, and
// validation short-circuits absence so the validator never observes nil.
// Applying AsNullable twice behaves identically to applying it once.
func (t *FieldTemplate) AsNullable() *FieldTemplate {
	c := t.clone()
	c.nullable = true
	c.factory = nil
	c.defaultVal = nil
	c.hasDefault = true
	return c
}

// AsListable derives a template that admits a sequence of the base type. With
// strict set, scalars are rejected outright; otherwise a bare scalar is also
// admitted. A validator applies to each element of a sequence and once to a
// scalar.
func (t *FieldTemplate) AsListable(strict bool) *FieldTemplate {
	c := t.clone()
	c.listable = true
	c.strict = strict
	return c
}

// BaseType returns the template's base type.
func (t *FieldTemplate) BaseType() reflect.Type { return t.baseType }

// Default returns the literal default value, if one is set.
func (t *FieldTemplate) Default() (any, bool) { return t.defaultVal, t.hasDefault }

// DefaultFactory returns the default factory, if one is set.
func (t *FieldTemplate) DefaultFactory() Factory { return t.factory }

// IsNullable reports whether the field admits explicit absence.
func (t *FieldTemplate) IsNullable() bool { return t.nullable }

// IsListable reports whether the field admits sequences.
func (t *FieldTemplate) IsListable() bool { return t.listable }

// IsStrict reports whether a listable field rejects bare scalars.
func (t *FieldTemplate) IsStrict() bool { return t.strict }

// IsFrozen reports whether the field is immutable after first assignment.
func (t *FieldTemplate) IsFrozen() bool { return t.frozen }

// IsRequired reports whether a value must be supplied: no default, no
// factory, not nullable.
func (t *FieldTemplate) IsRequired() bool {
	return !t.nullable && !t.hasDefault && t.factory == nil
}

// Validator returns the attached validator, if any.
func (t *FieldTemplate) Validator() Validator { return t.validator }

// Description returns the field description.
func (t *FieldTemplate) Description() string { return t.description }

// Title returns the field title.
func (t *FieldTemplate) Title() string { return t.title }

// Meta returns one custom metadata entry.
func (t *FieldTemplate) Meta(key string) (any, bool) {
	v, ok := t.meta[key]
	return v, ok
}

// Metadata returns a copy of all custom metadata.
func (t *FieldTemplate) Metadata() map[string]any {
	if len(t.meta) == 0 {
		return nil
	}
	m := make(map[string]any, len(t.meta))
	for k, v := range t.meta {
		m[k] = v
	}
	return m
}

// MetaString returns a metadata entry as a string.
func (t *FieldTemplate) MetaString(key string) (string, bool) {
	if v, ok := t.meta[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// MetaInt returns a metadata entry as an int, converting whole numeric values.
func (t *FieldTemplate) MetaInt(key string) (int, bool) {
	v, ok := t.meta[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// MetaFloat returns a metadata entry as a float64.
func (t *FieldTemplate) MetaFloat(key string) (float64, bool) {
	v, ok := t.meta[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// MetaBool returns a metadata entry as a bool.
func (t *FieldTemplate) MetaBool(key string) (bool, bool) {
	if v, ok := t.meta[key]; ok {
		if b, ok := v.(bool); ok {
			return b, true
		}
	}
	return false, false
}

// ApplyDefault evaluates the template's default: the factory when present,
// otherwise the literal default.
func (t *FieldTemplate) ApplyDefault() (any, bool) {
	if t.factory != nil {
		return t.factory(), true
	}
	if t.hasDefault {
		return t.defaultVal, true
	}
	return nil, false
}

// ValidateValue enforces the template's contract on a value: nullability,
// list admission, base-type conformance and the validator.
func (t *FieldTemplate) ValidateValue(v any) error {
	if v == nil {
		if t.nullable {
			return nil
		}
		return &errors.ValidationError{Reason: "value must not be nil"}
	}
	if t.listable {
		rv := reflect.ValueOf(v)
		if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				elem := rv.Index(i).Interface()
				if err := t.validateScalar(elem); err != nil {
					return &errors.ValidationError{
						Err:    err,
						Reason: fmt.Sprintf("element %d: %v", i, err),
						Value:  elem,
					}
				}
			}
			return nil
		}
		if t.strict {
			return &errors.ValidationError{
				Reason: fmt.Sprintf("expected a sequence of %s, got %T", t.baseType, v),
				Value:  v,
			}
		}
	}
	return t.validateScalar(v)
}

func (t *FieldTemplate) validateScalar(v any) error {
	if v == nil {
		if t.nullable {
			return nil
		}
		return &errors.ValidationError{Reason: "value must not be nil"}
	}
	if _, ok := coerce(v, t.baseType); !ok {
		return &errors.ValidationError{
			Reason: fmt.Sprintf("%T is not assignable to %s", v, t.baseType),
			Value:  v,
		}
	}
	if t.validator != nil {
		if err := t.validator(v); err != nil {
			var ve *errors.ValidationError
			if stdErrors.As(err, &ve) {
				return ve
			}
			return &errors.ValidationError{Err: err, Value: v}
		}
	}
	return nil
}

// CoerceValue resolves a value against a target type: directly assignable
// values pass through, numeric kinds convert, and defined types of the same
// kind convert. Lossy cross-kind conversions such as int to string are
// rejected.
func CoerceValue(v any, target reflect.Type) (reflect.Value, bool) {
	return coerce(v, target)
}

func coerce(v any, target reflect.Type) (reflect.Value, bool) {
	if target == anyType {
		return reflect.ValueOf(v), true
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	if rt.AssignableTo(target) {
		return rv, true
	}
	if isNumericKind(rt.Kind()) && isNumericKind(target.Kind()) {
		return rv.Convert(target), true
	}
	if rt.Kind() == target.Kind() && rt.ConvertibleTo(target) {
		return rv.Convert(target), true
	}
	return reflect.Value{}, false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// GoType materializes the Go type this template describes: strict lists
// become slices, non-strict lists become any (scalar or sequence), and
// nullable fields are wrapped in a pointer so nil expresses absence.
func (t *FieldTemplate) GoType() reflect.Type {
	typ := t.baseType
	if t.listable {
		if t.strict {
			typ = reflect.SliceOf(typ)
		} else {
			typ = anyType
		}
	}
	if t.nullable && typ.Kind() != reflect.Interface {
		return reflect.PointerTo(typ)
	}
	return typ
}

// Fingerprint renders the canonical content string used in schema hashing.
// Validators and factories contribute presence, not identity.
func (t *FieldTemplate) Fingerprint() string {
	var b strings.Builder
	b.WriteString("type=")
	b.WriteString(t.baseType.String())
	fmt.Fprintf(&b, ";nullable=%t;listable=%t;strict=%t;frozen=%t",
		t.nullable, t.listable, t.strict, t.frozen)
	switch {
	case t.factory != nil:
		b.WriteString(";default=factory")
	case t.hasDefault:
		fmt.Fprintf(&b, ";default=%v", t.defaultVal)
	}
	if t.validator != nil {
		b.WriteString(";validated")
	}
	if t.title != "" {
		fmt.Fprintf(&b, ";title=%s", t.title)
	}
	if t.description != "" {
		fmt.Fprintf(&b, ";description=%s", t.description)
	}
	if len(t.meta) > 0 {
		keys := make([]string, 0, len(t.meta))
		for k := range t.meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ";meta.%s=%v", k, t.meta[k])
		}
	}
	return b.String()
}

// Equal reports content equality between two templates.
func (t *FieldTemplate) Equal(o *FieldTemplate) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Fingerprint() == o.Fingerprint()
}

// Field binds a template to a schema field name.
type Field struct {
	Name     string
	Template *FieldTemplate
}

// CreateField binds this template to a field name, applying overrides as a
// derivation. It fails with FieldContractError if the name is not a valid
// bare identifier, if overrides produce both a default and a factory, or if
// a frozen template's frozen flag is overridden to mutable.
func (t *FieldTemplate) CreateField(name string, overrides ...TemplateOption) (Field, error) {
	if !IsIdentifier(name) {
		return Field{}, &errors.FieldContractError{Field: name, Reason: "not a valid identifier"}
	}
	derived := t
	if len(overrides) > 0 {
		d, err := t.With(overrides...)
		if err != nil {
			var ce *errors.FieldContractError
			if stdErrors.As(err, &ce) && ce.Field == "" {
				ce.Field = name
			}
			return Field{}, err
		}
		if t.frozen && !d.frozen {
			return Field{}, &errors.FieldContractError{Field: name, Reason: "cannot override frozen template to mutable"}
		}
		derived = d
	}
	return Field{Name: name, Template: derived}, nil
}

// IsIdentifier reports whether s is a valid bare identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
