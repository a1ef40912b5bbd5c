// Package dependency walks capability prerequisite graphs. Resolution only
// reports what a requested set is missing; nothing is ever added on the
// caller's behalf.
package dependency

import (
	"sort"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/ports"
)

// Resolver computes transitive prerequisite closures over a definition
// source. It holds no state; every call resolves against the source it is
// handed.
type Resolver struct{}

// NewResolver creates a dependency resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

var _ ports.DependencyResolver = (*Resolver)(nil)

// Closure returns the transitive prerequisites of one capability, sorted and
// deduplicated. The capability itself is excluded; cycles terminate.
// Prerequisites without a definition appear in the closure but are not
// expanded further.
func (r *Resolver) Closure(name string, src entities.DefinitionSource) []string {
	visited := map[string]struct{}{name: {}}
	var out []string

	var walk func(string)
	walk = func(current string) {
		def, ok := src(current)
		if !ok {
			return
		}
		for _, p := range def.Prerequisites {
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			out = append(out, p)
			walk(p)
		}
	}
	walk(name)

	sort.Strings(out)
	return out
}

// Missing returns every transitive prerequisite of the requested set that is
// not itself in the set, sorted and deduplicated.
func (r *Resolver) Missing(requested []string, src entities.DefinitionSource) []string {
	present := make(map[string]struct{}, len(requested))
	for _, n := range requested {
		present[n] = struct{}{}
	}

	missing := make(map[string]struct{})
	for _, n := range requested {
		for _, p := range r.Closure(n, src) {
			if _, ok := present[p]; !ok {
				missing[p] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(missing))
	for n := range missing {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
