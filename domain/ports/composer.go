package ports

import (
	"github.com/traitkit-dev/traitkit/domain/entities"
)

// Composer merges capability definitions into composite definitions and
// caches the results by their order-insensitive composition identity.
type Composer interface {
	// Compose merges defs in caller order. The bool reports whether the
	// result came from the cache; a cached result is returned as-is even if
	// a different resolver is supplied.
	Compose(defs []entities.CapabilityDefinition, resolver entities.ConflictResolver) (entities.CapabilityDefinition, bool, error)

	// Reset clears the composition cache.
	Reset()
}
