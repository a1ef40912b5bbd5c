package entities

import (
	"fmt"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// Validate checks that the definition is well formed: a non-empty name, valid
// snake_case member names, no duplicate members across required and optional,
// no template on a callable, and no self-prerequisite.
func (d CapabilityDefinition) Validate() error {
	if d.Name == "" {
		return &errors.InvalidDefinitionError{Reason: "capability name must not be empty"}
	}
	seen := make(map[string]struct{}, len(d.Required)+len(d.Optional))
	for _, m := range d.Members() {
		if !fields.IsIdentifier(m.Name) {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     fmt.Sprintf("member name %q is not a valid identifier", m.Name),
			}
		}
		if m.Kind != MemberAttribute && m.Kind != MemberCallable {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     fmt.Sprintf("member %q has unknown kind %q", m.Name, m.Kind),
			}
		}
		if m.Kind == MemberCallable && m.Template != nil {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     fmt.Sprintf("callable member %q must not carry a field template", m.Name),
			}
		}
		if _, dup := seen[m.Name]; dup {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     fmt.Sprintf("duplicate member %q", m.Name),
			}
		}
		seen[m.Name] = struct{}{}
	}
	for _, p := range d.Prerequisites {
		if p == d.Name {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     "capability cannot list itself as a prerequisite",
			}
		}
		if p == "" {
			return &errors.InvalidDefinitionError{
				Capability: d.Name,
				Reason:     "prerequisite name must not be empty",
			}
		}
	}
	return nil
}
