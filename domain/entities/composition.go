package entities

import (
	"sort"
	"strings"
)

// Composition is an order-insensitive set of capability names. It serves as
// the cache key for composed definitions and as a query convenience; two
// compositions over the same names are interchangeable regardless of the
// order they were built in.
type Composition struct {
	names []string // sorted, deduplicated
}

// NewComposition creates a composition over the given capability names.
// Names are deduplicated and ordering is irrelevant; empty names are dropped.
func NewComposition(names ...string) Composition {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return Composition{names: out}
}

// ID renders the canonical identity of the set: the sorted names joined
// with "+". Equal compositions render equal IDs.
func (c Composition) ID() string {
	return strings.Join(c.names, "+")
}

// Names returns the sorted capability names.
func (c Composition) Names() []string {
	return append([]string(nil), c.names...)
}

// Contains reports whether the composition includes the capability.
func (c Composition) Contains(name string) bool {
	i := sort.SearchStrings(c.names, name)
	return i < len(c.names) && c.names[i] == name
}

// Len returns the number of capabilities in the composition.
func (c Composition) Len() int { return len(c.names) }

// IsEmpty reports whether the composition holds no capabilities.
func (c Composition) IsEmpty() bool { return len(c.names) == 0 }

// Union returns the composition holding every name in either operand.
func (c Composition) Union(o Composition) Composition {
	return NewComposition(append(c.Names(), o.names...)...)
}

// Intersect returns the composition holding the names present in both
// operands.
func (c Composition) Intersect(o Composition) Composition {
	out := make([]string, 0, min(len(c.names), len(o.names)))
	for _, n := range c.names {
		if o.Contains(n) {
			out = append(out, n)
		}
	}
	return Composition{names: out}
}

// With returns the composition extended by the given names.
func (c Composition) With(names ...string) Composition {
	return NewComposition(append(c.Names(), names...)...)
}

// Equal reports whether both compositions hold exactly the same names.
func (c Composition) Equal(o Composition) bool {
	if len(c.names) != len(o.names) {
		return false
	}
	for i, n := range c.names {
		if o.names[i] != n {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer using the canonical ID.
func (c Composition) String() string { return c.ID() }
