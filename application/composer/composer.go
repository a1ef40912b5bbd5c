// Package composer merges capability definitions into composite definitions.
// Composition is pure over definitions: it never touches per-type
// registration state, and results are cached by the order-insensitive
// identity of the composed name set.
package composer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/ports"
)

// FirstWins keeps the member contributed earliest in caller order. It is the
// default conflict policy.
func FirstWins(name string, previous, incoming entities.Member, owner string) (entities.Member, error) {
	return previous, nil
}

// LastWins keeps the member contributed latest in caller order.
func LastWins(name string, previous, incoming entities.Member, owner string) (entities.Member, error) {
	return incoming, nil
}

// Strict aborts composition on any member name collision.
func Strict(name string, previous, incoming entities.Member, owner string) (entities.Member, error) {
	return entities.Member{}, fmt.Errorf("member %q conflicts with an earlier definition (contributed by %s)", name, owner)
}

// Composer merges definitions and caches composites keyed by composition ID.
type Composer struct {
	cache sync.Map // composition ID -> entities.CapabilityDefinition
}

// NewComposer creates a composer with an empty cache.
func NewComposer() *Composer {
	return &Composer{}
}

var _ ports.Composer = (*Composer)(nil)

// Compose merges defs in caller order into one composite definition:
// required members first, then optional ones, behaviors deduplicated,
// prerequisites unioned minus the composed set itself. A member name seen
// more than once invokes the resolver (nil means FirstWins); the chosen
// member keeps the first occurrence's position.
//
// The returned bool reports a cache hit. The cache key is the
// order-insensitive composition ID, so composing the same set in a different
// order returns the cached composite, even when a different resolver is
// supplied.
func (c *Composer) Compose(defs []entities.CapabilityDefinition, resolver entities.ConflictResolver) (entities.CapabilityDefinition, bool, error) {
	if len(defs) == 0 {
		return entities.CapabilityDefinition{}, false, fmt.Errorf("compose requires at least one definition")
	}
	defs = dedupeByName(defs)

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	id := entities.NewComposition(names...).ID()

	if cached, ok := c.cache.Load(id); ok {
		return cached.(entities.CapabilityDefinition), true, nil
	}

	if resolver == nil {
		resolver = FirstWins
	}

	required := newMemberMerge()
	for _, d := range defs {
		for _, m := range d.Required {
			if err := required.add(m, d.Name, resolver); err != nil {
				return entities.CapabilityDefinition{}, false, err
			}
		}
	}

	optional := newMemberMerge()
	for _, d := range defs {
		for _, m := range d.Optional {
			if required.has(m.Name) {
				continue
			}
			if err := optional.add(m, d.Name, resolver); err != nil {
				return entities.CapabilityDefinition{}, false, err
			}
		}
	}

	composed := entities.NewComposition(names...)
	prereqs := make(map[string]struct{})
	for _, d := range defs {
		for _, p := range d.Prerequisites {
			if !composed.Contains(p) {
				prereqs[p] = struct{}{}
			}
		}
	}
	prereqList := make([]string, 0, len(prereqs))
	for p := range prereqs {
		prereqList = append(prereqList, p)
	}
	sort.Strings(prereqList)

	result := entities.CapabilityDefinition{
		Name:          id,
		Description:   fmt.Sprintf("Composite of %s", strings.Join(names, ", ")),
		Required:      required.members(),
		Optional:      optional.members(),
		Prerequisites: prereqList,
	}

	if cached, loaded := c.cache.LoadOrStore(id, result); loaded {
		return cached.(entities.CapabilityDefinition), true, nil
	}
	return result, false, nil
}

// Reset clears the composition cache.
func (c *Composer) Reset() {
	c.cache.Clear()
}

// memberMerge accumulates members preserving first-occurrence order.
type memberMerge struct {
	order  []string
	byName map[string]entities.Member
}

func newMemberMerge() *memberMerge {
	return &memberMerge{byName: make(map[string]entities.Member)}
}

func (mm *memberMerge) add(m entities.Member, owner string, resolve entities.ConflictResolver) error {
	previous, exists := mm.byName[m.Name]
	if !exists {
		mm.order = append(mm.order, m.Name)
		mm.byName[m.Name] = m
		return nil
	}
	chosen, err := resolve(m.Name, previous, m, owner)
	if err != nil {
		return err
	}
	mm.byName[m.Name] = chosen
	return nil
}

func (mm *memberMerge) has(name string) bool {
	_, ok := mm.byName[name]
	return ok
}

func (mm *memberMerge) members() []entities.Member {
	if len(mm.order) == 0 {
		return nil
	}
	out := make([]entities.Member, len(mm.order))
	for i, n := range mm.order {
		out[i] = mm.byName[n]
	}
	return out
}

func dedupeByName(defs []entities.CapabilityDefinition) []entities.CapabilityDefinition {
	seen := make(map[string]struct{}, len(defs))
	out := make([]entities.CapabilityDefinition, 0, len(defs))
	for _, d := range defs {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d)
	}
	return out
}
