package entities

import (
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// MemberKind distinguishes the two member shapes a capability may demand.
type MemberKind string

const (
	// MemberAttribute is a data member: a field or accessor on the candidate.
	MemberAttribute MemberKind = "attribute"

	// MemberCallable is a behavioral member: a method on the candidate.
	MemberCallable MemberKind = "callable"
)

// Member is one named element of a capability contract. Names use the
// contract's snake_case form (e.g. "created_at"); structural validation maps
// them onto Go fields and methods.
type Member struct {
	// Name is the snake_case contract name.
	Name string `json:"name"`

	// Kind says whether the member is an attribute or a callable.
	Kind MemberKind `json:"kind"`

	// Description documents the member's meaning.
	Description string `json:"description,omitempty"`

	// Template optionally constrains an attribute's value shape.
	Template *fields.FieldTemplate `json:"-"`
}

// Attr creates an attribute member.
func Attr(name string) Member {
	return Member{Name: name, Kind: MemberAttribute}
}

// AttrT creates an attribute member constrained by a field template.
func AttrT(name string, t *fields.FieldTemplate) Member {
	return Member{Name: name, Kind: MemberAttribute, Template: t}
}

// Callable creates a callable member.
func Callable(name string) Member {
	return Member{Name: name, Kind: MemberCallable}
}

// WithDescription returns a copy of the Member with the description set.
func (m Member) WithDescription(d string) Member {
	m.Description = d
	return m
}

// CapabilityDefinition is a named contract: the members a conforming type
// must or may expose, plus the capabilities it presumes. Definitions are
// immutable values; the With* builders return copies.
type CapabilityDefinition struct {
	// Name is the unique capability key.
	Name string `json:"name"`

	// Version is an optional semantic version of the contract.
	Version string `json:"version,omitempty"`

	// Description documents the capability's meaning.
	Description string `json:"description,omitempty"`

	// Module is the declaring module path. Coherence decisions compare it
	// against the candidate type's module.
	Module string `json:"module,omitempty"`

	// Required lists members every conforming type must expose.
	Required []Member `json:"required,omitempty"`

	// Optional lists members a conforming type may expose.
	Optional []Member `json:"optional,omitempty"`

	// Prerequisites names capabilities that must be registered for the same
	// type before this one.
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// NewCapability creates a definition with the given name.
func NewCapability(name string) CapabilityDefinition {
	return CapabilityDefinition{Name: name}
}

// WithVersion returns a copy of the definition with the version set.
func (d CapabilityDefinition) WithVersion(v string) CapabilityDefinition {
	d.Version = v
	return d
}

// WithDescription returns a copy of the definition with the description set.
func (d CapabilityDefinition) WithDescription(desc string) CapabilityDefinition {
	d.Description = desc
	return d
}

// WithModule returns a copy of the definition with the declaring module set.
func (d CapabilityDefinition) WithModule(module string) CapabilityDefinition {
	d.Module = module
	return d
}

// WithRequired returns a copy of the definition with the required members
// replaced.
func (d CapabilityDefinition) WithRequired(members ...Member) CapabilityDefinition {
	d.Required = append([]Member(nil), members...)
	return d
}

// WithOptional returns a copy of the definition with the optional members
// replaced.
func (d CapabilityDefinition) WithOptional(members ...Member) CapabilityDefinition {
	d.Optional = append([]Member(nil), members...)
	return d
}

// WithPrerequisites returns a copy of the definition with the prerequisite
// capability names replaced.
func (d CapabilityDefinition) WithPrerequisites(names ...string) CapabilityDefinition {
	d.Prerequisites = append([]string(nil), names...)
	return d
}

// Members returns required members followed by optional ones.
func (d CapabilityDefinition) Members() []Member {
	out := make([]Member, 0, len(d.Required)+len(d.Optional))
	out = append(out, d.Required...)
	out = append(out, d.Optional...)
	return out
}

// RequiredNames returns the names of the required members in order.
func (d CapabilityDefinition) RequiredNames() []string {
	return memberNames(d.Required)
}

// OptionalNames returns the names of the optional members in order.
func (d CapabilityDefinition) OptionalNames() []string {
	return memberNames(d.Optional)
}

// Behaviors returns the callable member names, required before optional,
// deduplicated preserving first occurrence.
func (d CapabilityDefinition) Behaviors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range d.Members() {
		if m.Kind != MemberCallable {
			continue
		}
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		out = append(out, m.Name)
	}
	return out
}

// HasMember reports whether the definition names the member, required or
// optional.
func (d CapabilityDefinition) HasMember(name string) bool {
	for _, m := range d.Required {
		if m.Name == name {
			return true
		}
	}
	for _, m := range d.Optional {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Member looks up a member by name, searching required members first.
func (d CapabilityDefinition) Member(name string) (Member, bool) {
	for _, m := range d.Required {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range d.Optional {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func memberNames(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}
