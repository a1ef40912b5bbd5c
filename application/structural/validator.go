// Package structural implements reflection-based structural validation:
// deciding whether a Go type exposes every required member of a capability
// contract.
package structural

import (
	"reflect"
	"strings"
	"sync"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/ports"
	"github.com/traitkit-dev/traitkit/internal/naming"
	"github.com/traitkit-dev/traitkit/internal/synth"
)

// Validator checks candidate types against capability definitions by
// reflection. The exposed-member surface of each type is computed once and
// memoized, so repeated registrations of the same type do not re-walk its
// fields and methods.
type Validator struct {
	memo sync.Map // reflect.Type -> *exposed
}

// exposed is the memoized member surface of one type, keyed by the members'
// snake_case contract names.
type exposed struct {
	attrs   map[string]struct{} // exported fields, by json tag and folded name
	getters map[string]struct{} // zero-argument exported methods
	methods map[string]struct{} // all exported methods
}

// NewValidator creates a structural validator.
func NewValidator() *Validator {
	return &Validator{}
}

var _ ports.StructuralValidator = (*Validator)(nil)

// Validate returns nil when t exposes every required member of def, or a
// StructuralError listing every missing one. An attribute is exposed through
// an exported struct field (promoted fields included) whose json tag or
// snake_case-folded name matches, or through a zero-argument method; a
// callable is exposed through any exported method with a matching fold.
// Optional members never affect the verdict. Factory-synthesized types are
// checked against their recorded member sets instead.
func (v *Validator) Validate(t reflect.Type, def entities.CapabilityDefinition) error {
	var missing []string
	if members, ok := synth.MembersOf(t); ok {
		for _, m := range def.Required {
			if _, ok := members[m.Name]; !ok {
				missing = append(missing, m.Name)
			}
		}
	} else {
		ex := v.exposedOf(t)
		for _, m := range def.Required {
			if !ex.satisfies(m) {
				missing = append(missing, m.Name)
			}
		}
	}
	if len(missing) > 0 {
		return &errors.StructuralError{
			Capability: def.Name,
			Candidate:  entities.TypeName(t),
			Missing:    missing,
		}
	}
	return nil
}

func (e *exposed) satisfies(m entities.Member) bool {
	if m.Kind == entities.MemberCallable {
		_, ok := e.methods[m.Name]
		return ok
	}
	if _, ok := e.attrs[m.Name]; ok {
		return true
	}
	_, ok := e.getters[m.Name]
	return ok
}

func (v *Validator) exposedOf(t reflect.Type) *exposed {
	if cached, ok := v.memo.Load(t); ok {
		return cached.(*exposed)
	}
	actual, _ := v.memo.LoadOrStore(t, survey(t))
	return actual.(*exposed)
}

// survey walks the type's visible fields and its pointer method set. Method
// sets are taken from *T so value and pointer receivers both count.
func survey(t reflect.Type) *exposed {
	ex := &exposed{
		attrs:   make(map[string]struct{}),
		getters: make(map[string]struct{}),
		methods: make(map[string]struct{}),
	}

	if t.Kind() == reflect.Interface {
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			name := naming.SnakeCase(m.Name)
			ex.methods[name] = struct{}{}
			if m.Type.NumIn() == 0 && m.Type.NumOut() >= 1 {
				ex.getters[name] = struct{}{}
			}
		}
		return ex
	}

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(base) {
			if f.PkgPath != "" {
				continue
			}
			if tag, ok := f.Tag.Lookup("json"); ok {
				if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
					ex.attrs[name] = struct{}{}
				}
			}
			ex.attrs[naming.SnakeCase(f.Name)] = struct{}{}
		}
	}

	mt := t
	if mt.Kind() != reflect.Pointer {
		mt = reflect.PointerTo(mt)
	}
	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		if m.PkgPath != "" {
			continue
		}
		name := naming.SnakeCase(m.Name)
		ex.methods[name] = struct{}{}
		// Method types carry the receiver as the first input here.
		if m.Type.NumIn() == 1 && m.Type.NumOut() >= 1 {
			ex.getters[name] = struct{}{}
		}
	}
	return ex
}
