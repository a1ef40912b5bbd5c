package fields

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Schema is an immutable, content-addressable set of named field templates
// plus metadata. Field order is significant. Derivations return new Schemas;
// two Schemas with equal name, fields and metadata compare and hash equal
// regardless of construction history.
type Schema struct {
	name     string
	order    []string
	fields   map[string]*FieldTemplate
	metadata map[string]any

	hashOnce     sync.Once
	hash         string
	requiredOnce sync.Once
	required     []string
	optionalOnce sync.Once
	optional     []string
}

func newSchema(name string, order []string, fields map[string]*FieldTemplate, metadata map[string]any) *Schema {
	s := &Schema{
		name:     name,
		order:    make([]string, len(order)),
		fields:   make(map[string]*FieldTemplate, len(fields)),
		metadata: make(map[string]any, len(metadata)),
	}
	copy(s.order, order)
	for k, v := range fields {
		s.fields[k] = v
	}
	for k, v := range metadata {
		s.metadata[k] = v
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// FieldNames returns the ordered field names.
func (s *Schema) FieldNames() []string {
	return append([]string(nil), s.order...)
}

// Field returns the template bound to a field name.
func (s *Schema) Field(name string) (*FieldTemplate, bool) {
	t, ok := s.fields[name]
	return t, ok
}

// Fields returns the ordered bound fields.
func (s *Schema) Fields() []Field {
	fs := make([]Field, 0, len(s.order))
	for _, n := range s.order {
		fs = append(fs, Field{Name: n, Template: s.fields[n]})
	}
	return fs
}

// RequiredFields returns the names of fields that must be supplied. The view
// is computed on first access and cached.
func (s *Schema) RequiredFields() []string {
	s.requiredOnce.Do(func() {
		for _, n := range s.order {
			if s.fields[n].IsRequired() {
				s.required = append(s.required, n)
			}
		}
	})
	return append([]string(nil), s.required...)
}

// OptionalFields returns the names of fields with a default, factory or
// nullability. The view is computed on first access and cached.
func (s *Schema) OptionalFields() []string {
	s.optionalOnce.Do(func() {
		for _, n := range s.order {
			if !s.fields[n].IsRequired() {
				s.optional = append(s.optional, n)
			}
		}
	})
	return append([]string(nil), s.optional...)
}

// CreateFields binds every template to its field name, in schema order.
// Format adapters consume this to learn which attributes to read and write.
func (s *Schema) CreateFields() ([]Field, error) {
	fs := make([]Field, 0, len(s.order))
	for _, n := range s.order {
		f, err := s.fields[n].CreateField(n)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// Metadata returns a copy of the schema metadata.
func (s *Schema) Metadata() map[string]any {
	m := make(map[string]any, len(s.metadata))
	for k, v := range s.metadata {
		m[k] = v
	}
	return m
}

// Meta returns one metadata entry.
func (s *Schema) Meta(key string) (any, bool) {
	v, ok := s.metadata[key]
	return v, ok
}

// Hash returns the sha256 content hash over the schema name and its sorted
// field and metadata entries. It is a pure function of content, computed on
// first access and cached.
func (s *Schema) Hash() string {
	s.hashOnce.Do(func() {
		names := append([]string(nil), s.order...)
		sort.Strings(names)

		var b strings.Builder
		b.WriteString("schema=")
		b.WriteString(s.name)
		for _, n := range names {
			fmt.Fprintf(&b, "|field:%s{%s}", n, s.fields[n].Fingerprint())
		}
		if len(s.metadata) > 0 {
			keys := make([]string, 0, len(s.metadata))
			for k := range s.metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "|meta:%s=%v", k, s.metadata[k])
			}
		}
		sum := sha256.Sum256([]byte(b.String()))
		s.hash = hex.EncodeToString(sum[:])
	})
	return s.hash
}

// Equal reports content equality between two schemas.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Hash() == o.Hash()
}

// Merge combines two schemas into a new one. The other schema's fields and
// metadata win on name collision; its new fields append after this schema's.
// An empty name defaults to "<this>_<other>".
func (s *Schema) Merge(o *Schema, name string) *Schema {
	if name == "" {
		name = s.name + "_" + o.name
	}
	order := append([]string(nil), s.order...)
	fields := make(map[string]*FieldTemplate, len(s.fields)+len(o.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	for _, n := range o.order {
		if _, ok := fields[n]; !ok {
			order = append(order, n)
		}
		fields[n] = o.fields[n]
	}
	metadata := make(map[string]any, len(s.metadata)+len(o.metadata))
	for k, v := range s.metadata {
		metadata[k] = v
	}
	for k, v := range o.metadata {
		metadata[k] = v
	}
	return newSchema(name, order, fields, metadata)
}

// Select keeps only the requested fields, in their original relative order.
// Requested names absent from the schema are silently dropped. An empty name
// defaults to "<this>_subset".
func (s *Schema) Select(names []string, name string) *Schema {
	if name == "" {
		name = s.name + "_subset"
	}
	requested := make(map[string]struct{}, len(names))
	for _, n := range names {
		requested[n] = struct{}{}
	}
	var order []string
	fields := make(map[string]*FieldTemplate)
	for _, n := range s.order {
		if _, ok := requested[n]; ok {
			order = append(order, n)
			fields[n] = s.fields[n]
		}
	}
	return newSchema(name, order, fields, s.metadata)
}

// Extend adds or overwrites fields. Overwritten fields keep their position;
// new fields append in the given order. Entries with a nil template are
// ignored.
func (s *Schema) Extend(fs ...Field) *Schema {
	order := append([]string(nil), s.order...)
	fields := make(map[string]*FieldTemplate, len(s.fields)+len(fs))
	for k, v := range s.fields {
		fields[k] = v
	}
	for _, f := range fs {
		if f.Template == nil {
			continue
		}
		if _, ok := fields[f.Name]; !ok {
			order = append(order, f.Name)
		}
		fields[f.Name] = f.Template
	}
	return newSchema(s.name, order, fields, s.metadata)
}
