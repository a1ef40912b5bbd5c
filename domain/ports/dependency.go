package ports

import (
	"github.com/traitkit-dev/traitkit/domain/entities"
)

// DependencyResolver walks capability prerequisite graphs. Resolution never
// auto-registers anything; it only reports what a set is missing.
type DependencyResolver interface {
	// Closure returns the transitive prerequisites of one capability,
	// sorted and deduplicated. Cycles terminate; the capability itself is
	// not included.
	Closure(name string, src entities.DefinitionSource) []string

	// Missing returns every transitive prerequisite of the requested set
	// that is not itself in the set, sorted. Prerequisites without a
	// definition count as missing and are not expanded further.
	Missing(requested []string, src entities.DefinitionSource) []string
}
