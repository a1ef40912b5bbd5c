// Package coherence enforces the orphan rule: a capability may be attached
// to a type only when at least one of the two, the capability definition or
// the candidate type, originates from a module the deployment declared local.
// This keeps unrelated codebases from attaching conflicting contracts to the
// same foreign type.
package coherence

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/ports"
)

// Guard matches module paths against declared local-module glob patterns.
// Match decisions are memoized per module path; adding a pattern invalidates
// the memo.
type Guard struct {
	mu       sync.RWMutex
	patterns []string
	memo     sync.Map // module path -> bool
}

// NewGuard creates a guard over the given local-module patterns. Invalid
// patterns are rejected.
func NewGuard(patterns ...string) (*Guard, error) {
	g := &Guard{}
	for _, p := range patterns {
		if err := g.AddLocalModule(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

var _ ports.CoherenceGuard = (*Guard)(nil)

// AddLocalModule declares a module glob pattern (doublestar syntax, e.g.
// "github.com/myorg/**") as local. The pattern is validated eagerly.
func (g *Guard) AddLocalModule(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("local module pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid local module pattern %q", pattern)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.patterns {
		if p == pattern {
			return nil
		}
	}
	g.patterns = append(g.patterns, pattern)
	g.memo.Clear()
	return nil
}

// LocalModules returns the declared patterns in declaration order.
func (g *Guard) LocalModules() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.patterns...)
}

// Validate returns nil when the pairing is coherent: the candidate type's
// package path or the definition's declaring module is local. Types with an
// empty package path (synthesized or unnamed types) and definitions with no
// declared module are local by construction.
func (g *Guard) Validate(t reflect.Type, def entities.CapabilityDefinition) error {
	candidate := packagePath(t)
	if candidate == "" || def.Module == "" {
		return nil
	}
	if g.IsLocal(candidate) || g.IsLocal(def.Module) {
		return nil
	}
	return &errors.CoherenceError{
		Capability:       def.Name,
		Candidate:        entities.TypeName(t),
		CapabilityModule: def.Module,
		CandidateModule:  candidate,
	}
}

// IsLocal reports whether a module path matches any declared pattern.
func (g *Guard) IsLocal(module string) bool {
	if module == "" {
		return true
	}
	if cached, ok := g.memo.Load(module); ok {
		return cached.(bool)
	}
	g.mu.RLock()
	local := false
	for _, p := range g.patterns {
		if ok, err := doublestar.Match(p, module); err == nil && ok {
			local = true
			break
		}
	}
	// Stored under the read lock so a concurrent pattern add, which clears
	// the memo under the write lock, cannot leave a stale decision behind.
	g.memo.Store(module, local)
	g.mu.RUnlock()
	return local
}

// packagePath unwraps pointers and returns the type's package path.
func packagePath(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}
