package registry

import (
	"reflect"
	"sort"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
)

// Register attaches one or more capabilities to a candidate type. The whole
// batch is validated (structural, coherence, dependency) before any state
// changes; a rejection leaves the registry untouched. Prerequisites may be
// satisfied by the type's live registrations or by other names in the same
// batch. Re-registering an existing pair is an idempotent no-op.
func (r *Registry) Register(candidate any, names ...string) error {
	t, err := entities.TypeOf(candidate)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	requested := dedupeNames(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Resolve every definition up front; an unknown name fails the batch
	// before any validation runs.
	defs := make([]entities.CapabilityDefinition, 0, len(requested))
	for _, name := range requested {
		def, ok := r.defs[name]
		if !ok {
			return &errors.UnknownCapabilityError{Capability: name}
		}
		defs = append(defs, def)
	}

	batch := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		batch[name] = struct{}{}
	}
	registered := r.liveCapabilitiesLocked(t)
	src := r.definitionSourceLocked()
	typeName := entities.TypeName(t)

	for _, def := range defs {
		if err := r.validateOne(t, def, typeName, batch, registered, src); err != nil {
			return err
		}
	}

	token := r.tokenLocked(t)
	recs := r.records[token]
	if recs == nil {
		recs = make(map[string]entities.ImplementationRecord)
		r.records[token] = recs
	}
	for _, def := range defs {
		if _, dup := recs[def.Name]; !dup {
			recs[def.Name] = entities.ImplementationRecord{
				Capability:   def.Name,
				Token:        token,
				TypeName:     typeName,
				RegisteredAt: r.clock(),
			}
		}
		r.registrations.Add(1)
		r.metrics.RegistrationRecorded(def.Name, "accepted")
	}
	r.metrics.ActiveImplementations(r.liveRecordCountLocked())
	r.logger.Debug().
		Str("candidate", typeName).
		Strs("capabilities", requested).
		Str("token", string(token)).
		Msg("registration accepted")
	return nil
}

// validateOne runs the three validation stages for one (type, capability)
// pair. Callers hold r.mu.
func (r *Registry) validateOne(t reflect.Type, def entities.CapabilityDefinition, typeName string,
	batch, registered map[string]struct{}, src entities.DefinitionSource) error {
	if err := r.structural.Validate(t, def); err != nil {
		return r.reject(def.Name, typeName, err)
	}
	if err := r.coherence.Validate(t, def); err != nil {
		return r.reject(def.Name, typeName, err)
	}

	var missing []string
	for _, prereq := range r.dependency.Closure(def.Name, src) {
		if _, ok := batch[prereq]; ok {
			continue
		}
		if _, ok := registered[prereq]; ok {
			continue
		}
		missing = append(missing, prereq)
	}
	if len(missing) > 0 {
		return r.reject(def.Name, typeName, &errors.DependencyError{
			Capability: def.Name,
			Candidate:  typeName,
			Missing:    missing,
		})
	}
	return nil
}

// reject records a rejection in metrics and the log, then passes the error
// through.
func (r *Registry) reject(capability, typeName string, err error) error {
	if rej, ok := errors.ToRejection(err); ok {
		r.metrics.RegistrationRecorded(capability, string(rej.Reason))
		r.logger.Warn().
			Str("capability", capability).
			Str("candidate", typeName).
			Str("reason", string(rej.Reason)).
			Strs("missing", rej.Missing).
			Msg("registration rejected")
	}
	return err
}

// HasCapability reports whether the candidate can act as the named capability:
// either a live registration exists, or the type structurally satisfies the
// definition. The structural fallback keeps unregistered but conformant types
// usable; coherence and dependency guarantees only hold for registered ones.
func (r *Registry) HasCapability(candidate any, name string) bool {
	r.lookups.Add(1)
	r.metrics.LookupRecorded()

	t, err := entities.TypeOf(candidate)
	if err != nil {
		return false
	}

	r.mu.RLock()
	def, defined := r.defs[name]
	if !defined {
		r.mu.RUnlock()
		return false
	}
	if token, ok := r.tokens[t]; ok && r.live[token] {
		if _, ok := r.records[token][name]; ok {
			r.mu.RUnlock()
			return true
		}
	}
	r.mu.RUnlock()

	return r.structural.Validate(t, def) == nil
}

// Capabilities returns the candidate's live registered capability names,
// sorted.
func (r *Registry) Capabilities(candidate any) []string {
	r.lookups.Add(1)
	r.metrics.LookupRecorded()

	t, err := entities.TypeOf(candidate)
	if err != nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[t]
	if !ok || !r.live[token] {
		return nil
	}
	names := make([]string, 0, len(r.records[token]))
	for name := range r.records[token] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Retire marks the candidate's registrations for removal by the next cleanup
// pass. It reports whether anything was marked. Queries stop seeing the type
// immediately; the records linger until CleanupOrphanedReferences runs.
func (r *Registry) Retire(candidate any) bool {
	t, err := entities.TypeOf(candidate)
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[t]
	if !ok || !r.live[token] {
		return false
	}
	r.live[token] = false
	r.metrics.ActiveImplementations(r.liveRecordCountLocked())
	r.logger.Debug().
		Str("candidate", entities.TypeName(t)).
		Str("token", string(token)).
		Msg("type retired")
	return true
}

// CleanupOrphanedReferences removes every record whose token is retired,
// along with the token bookkeeping, and returns the number of records
// removed. The liveness flag is re-read per token during the sweep, so a type
// re-registered since its retirement survives. Sweeps are explicit and
// caller-driven; nothing schedules them.
func (r *Registry) CleanupOrphanedReferences() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, isLive := range r.live {
		if isLive {
			continue
		}
		removed += len(r.records[token])
		if t, ok := r.types[token]; ok {
			delete(r.tokens, t)
		}
		delete(r.types, token)
		delete(r.records, token)
		delete(r.live, token)
	}
	if removed > 0 {
		r.logger.Debug().Int("records", removed).Msg("orphaned records swept")
	}
	r.metrics.OrphansSwept(removed)
	return removed
}

// tokenLocked returns the type's token, allocating one on first registration
// and reviving a retired token on re-registration. Callers hold r.mu.
func (r *Registry) tokenLocked(t reflect.Type) entities.Token {
	if token, ok := r.tokens[t]; ok {
		r.live[token] = true
		return token
	}
	token := entities.NewToken()
	r.tokens[t] = token
	r.types[token] = t
	r.live[token] = true
	return token
}

// liveCapabilitiesLocked returns the capability names with live records for
// the type. Callers hold r.mu.
func (r *Registry) liveCapabilitiesLocked(t reflect.Type) map[string]struct{} {
	out := make(map[string]struct{})
	token, ok := r.tokens[t]
	if !ok || !r.live[token] {
		return out
	}
	for name := range r.records[token] {
		out[name] = struct{}{}
	}
	return out
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
