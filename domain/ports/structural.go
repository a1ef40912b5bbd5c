package ports

import (
	"reflect"

	"github.com/traitkit-dev/traitkit/domain/entities"
)

// StructuralValidator decides whether a candidate type exposes every required
// member of a capability definition. Implementations report the full set of
// missing members, not just the first.
type StructuralValidator interface {
	// Validate returns nil when t satisfies def, or a StructuralError
	// listing every missing required member.
	Validate(t reflect.Type, def entities.CapabilityDefinition) error
}
