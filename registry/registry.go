package registry

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/traitkit-dev/traitkit/application/coherence"
	"github.com/traitkit-dev/traitkit/application/composer"
	"github.com/traitkit-dev/traitkit/application/dependency"
	"github.com/traitkit-dev/traitkit/application/model"
	"github.com/traitkit-dev/traitkit/application/structural"
	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/ports"
)

// selfModule marks capability definitions shipped with this module as local,
// so the bundled catalog registers without any guard configuration.
const selfModule = "github.com/traitkit-dev/traitkit/**"

// Registry is the process-wide capability registry. The zero value is not
// usable; construct with New.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]entities.CapabilityDefinition
	sealed  map[string]struct{}
	tokens  map[reflect.Type]entities.Token
	types   map[entities.Token]reflect.Type
	records map[entities.Token]map[string]entities.ImplementationRecord
	live    map[entities.Token]bool

	registrations atomic.Int64
	lookups       atomic.Int64

	logger     zerolog.Logger
	metrics    ports.Metrics
	clock      func() time.Time
	policy     OverwritePolicy
	structural ports.StructuralValidator
	coherence  ports.CoherenceGuard
	dependency ports.DependencyResolver
	composer   ports.Composer
	factory    *model.Factory
}

// New creates a registry with default stages: reflection-based structural
// validation, a coherence guard that treats this module as local, prerequisite
// closure resolution, a caching composer and a caching model factory.
func New(opts ...Option) *Registry {
	guard, err := coherence.NewGuard(selfModule)
	if err != nil {
		panic(err)
	}
	r := &Registry{
		defs:       make(map[string]entities.CapabilityDefinition),
		sealed:     make(map[string]struct{}),
		tokens:     make(map[reflect.Type]entities.Token),
		types:      make(map[entities.Token]reflect.Type),
		records:    make(map[entities.Token]map[string]entities.ImplementationRecord),
		live:       make(map[entities.Token]bool),
		logger:     zerolog.Nop(),
		metrics:    ports.NopMetrics{},
		clock:      func() time.Time { return time.Now().UTC() },
		policy:     OverwriteAlways,
		structural: structural.NewValidator(),
		coherence:  guard,
		dependency: dependency.NewResolver(),
		composer:   composer.NewComposer(),
		factory:    model.NewFactory(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define validates and stores a capability definition. Redefining an existing
// name is governed by the overwrite policy; a sealed name always rejects
// redefinition.
func (r *Registry) Define(def entities.CapabilityDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[def.Name]; ok {
		if _, isSealed := r.sealed[def.Name]; isSealed {
			return &errors.DuplicateError{Capability: def.Name, Existing: existing.Version}
		}
		switch r.policy {
		case OverwriteNever:
			return &errors.DuplicateError{Capability: def.Name, Existing: existing.Version}
		case OverwriteIfNewer:
			if !strictlyNewer(def.Version, existing.Version) {
				return &errors.DuplicateError{Capability: def.Name, Existing: existing.Version}
			}
		}
	}

	r.defs[def.Name] = def
	r.metrics.CapabilitiesDefined(len(r.defs))
	r.logger.Debug().
		Str("capability", def.Name).
		Str("version", def.Version).
		Msg("capability defined")
	return nil
}

// ExtendCapability appends members to an existing, non-sealed definition. The
// extended definition is validated as a whole before it replaces the old one.
func (r *Registry) ExtendCapability(name string, required, optional []entities.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[name]
	if !ok {
		return &errors.UnknownCapabilityError{Capability: name}
	}
	if _, isSealed := r.sealed[name]; isSealed {
		return &errors.SealedError{Capability: name}
	}

	extended := def.
		WithRequired(append(append([]entities.Member{}, def.Required...), required...)...).
		WithOptional(append(append([]entities.Member{}, def.Optional...), optional...)...)
	if err := extended.Validate(); err != nil {
		return err
	}

	r.defs[name] = extended
	r.logger.Debug().
		Str("capability", name).
		Int("required_added", len(required)).
		Int("optional_added", len(optional)).
		Msg("capability extended")
	return nil
}

// Seal freezes a definition's member set. Sealing is idempotent and does not
// stop new types from registering the capability.
func (r *Registry) Seal(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[name]; !ok {
		return &errors.UnknownCapabilityError{Capability: name}
	}
	r.sealed[name] = struct{}{}
	return nil
}

// AddLocalModule declares a module pattern as local for coherence checks.
func (r *Registry) AddLocalModule(pattern string) error {
	return r.coherence.AddLocalModule(pattern)
}

// LocalModules returns the declared local module patterns.
func (r *Registry) LocalModules() []string {
	return r.coherence.LocalModules()
}

// Definition returns the stored definition for a capability name.
func (r *Registry) Definition(name string) (entities.CapabilityDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// DefinedCapabilities returns every defined capability name, sorted.
func (r *Registry) DefinedCapabilities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependencyGraph returns each defined capability's declared prerequisites.
func (r *Registry) DependencyGraph() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := make(map[string][]string, len(r.defs))
	for name, def := range r.defs {
		graph[name] = append([]string{}, def.Prerequisites...)
	}
	return graph
}

// Stats returns a snapshot of registry activity.
func (r *Registry) Stats() entities.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return entities.Stats{
		Registrations:         r.registrations.Load(),
		Lookups:               r.lookups.Load(),
		ActiveImplementations: int64(r.liveRecordCountLocked()),
		TotalCapabilities:     int64(len(r.defs)),
	}
}

// Reset drops every definition, registration and cached composition or model.
// Configuration (logger, metrics, policy, local modules) survives. Intended
// for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs = make(map[string]entities.CapabilityDefinition)
	r.sealed = make(map[string]struct{})
	r.tokens = make(map[reflect.Type]entities.Token)
	r.types = make(map[entities.Token]reflect.Type)
	r.records = make(map[entities.Token]map[string]entities.ImplementationRecord)
	r.live = make(map[entities.Token]bool)
	r.registrations.Store(0)
	r.lookups.Store(0)
	r.composer.Reset()
	r.factory.Reset()
	r.metrics.CapabilitiesDefined(0)
	r.metrics.ActiveImplementations(0)
}

// liveRecordCountLocked counts records under live tokens. Callers hold r.mu.
func (r *Registry) liveRecordCountLocked() int {
	total := 0
	for token, isLive := range r.live {
		if isLive {
			total += len(r.records[token])
		}
	}
	return total
}

// definitionSourceLocked returns a lookup over the current definitions.
// Callers hold r.mu; the returned closure must not outlive the lock, so
// callers that need one past the critical section snapshot first.
func (r *Registry) definitionSourceLocked() entities.DefinitionSource {
	return func(name string) (entities.CapabilityDefinition, bool) {
		def, ok := r.defs[name]
		return def, ok
	}
}

// snapshotDefsLocked copies the definition map. Callers hold r.mu.
func (r *Registry) snapshotDefsLocked() map[string]entities.CapabilityDefinition {
	out := make(map[string]entities.CapabilityDefinition, len(r.defs))
	for name, def := range r.defs {
		out[name] = def
	}
	return out
}

func strictlyNewer(incoming, existing string) bool {
	in, err := semver.NewVersion(incoming)
	if err != nil {
		return false
	}
	cur, err := semver.NewVersion(existing)
	if err != nil {
		return false
	}
	return in.GreaterThan(cur)
}
