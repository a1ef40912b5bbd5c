package ports

import (
	"reflect"

	"github.com/traitkit-dev/traitkit/domain/entities"
)

// CoherenceGuard enforces the orphan rule: a registration is coherent only if
// the candidate type or the capability definition originates from a module
// the deployment declared local.
type CoherenceGuard interface {
	// Validate returns nil when the pairing is coherent, or a CoherenceError
	// naming both modules.
	Validate(t reflect.Type, def entities.CapabilityDefinition) error

	// AddLocalModule declares a module pattern as local. The pattern is
	// validated eagerly.
	AddLocalModule(pattern string) error

	// LocalModules returns the declared patterns in declaration order.
	LocalModules() []string
}
