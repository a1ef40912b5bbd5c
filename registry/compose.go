package registry

import (
	"github.com/traitkit-dev/traitkit/application/model"
	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// Compose merges the named capabilities into one composite definition using
// the default first-wins conflict resolution.
func (r *Registry) Compose(names ...string) (entities.CapabilityDefinition, error) {
	return r.ComposeWith(nil, names...)
}

// ComposeWith merges the named capabilities with a custom conflict resolver.
// Results are cached by the order-insensitive composition identity; a cached
// set returns the cached composite even under a different resolver.
func (r *Registry) ComposeWith(resolver entities.ConflictResolver, names ...string) (entities.CapabilityDefinition, error) {
	defs, err := r.definitionsFor(names)
	if err != nil {
		return entities.CapabilityDefinition{}, err
	}
	composed, hit, err := r.composer.Compose(defs, resolver)
	if err != nil {
		return entities.CapabilityDefinition{}, err
	}
	r.metrics.CompositionRecorded(hit)
	return composed, nil
}

// BuildModel composes the requested capabilities and synthesizes a model
// type: attribute members become schema fields (declared-only attributes get
// the Any template), extra fields are appended, and the synthesized type is
// registered for every requested capability.
func (r *Registry) BuildModel(name string, capabilities []string, extra ...fields.Field) (*model.Model, error) {
	requested := dedupeNames(capabilities)

	r.mu.RLock()
	defs := make([]entities.CapabilityDefinition, 0, len(requested))
	for _, capName := range requested {
		def, ok := r.defs[capName]
		if !ok {
			r.mu.RUnlock()
			return nil, &errors.UnknownCapabilityError{Capability: capName}
		}
		defs = append(defs, def)
	}
	snapshot := r.snapshotDefsLocked()
	r.mu.RUnlock()

	src := func(n string) (entities.CapabilityDefinition, bool) {
		def, ok := snapshot[n]
		return def, ok
	}
	if missing := r.dependency.Missing(requested, src); len(missing) > 0 {
		return nil, &errors.DependencyError{
			Capability: entities.NewComposition(requested...).ID(),
			Missing:    missing,
		}
	}

	composed, hit, err := r.composer.Compose(defs, nil)
	if err != nil {
		return nil, err
	}
	r.metrics.CompositionRecorded(hit)

	builder := fields.NewSchemaBuilder(name)
	for _, member := range composed.Members() {
		if member.Kind != entities.MemberAttribute {
			continue
		}
		tpl := member.Template
		if tpl == nil {
			tpl = fields.Any
		}
		if member.Description != "" {
			builder.AddField(member.Name, tpl, fields.WithDescription(member.Description))
		} else {
			builder.AddField(member.Name, tpl)
		}
	}
	builder.AddFields(extra...)
	builder.WithMetadata(map[string]any{
		"capabilities": entities.NewComposition(requested...).Names(),
	})

	s, err := builder.Build()
	if err != nil {
		return nil, err
	}

	m, err := r.factory.Build(s,
		model.WithBehaviors(composed.Behaviors()...),
		model.WithCapabilities(requested...),
	)
	if err != nil {
		return nil, err
	}

	// The synthesized type passes all three stages by construction: its
	// members are recorded for structural checks, it has no package path,
	// and the requested set was just closed over its prerequisites.
	if err := r.Register(m.GoType(), requested...); err != nil {
		return nil, err
	}
	r.logger.Debug().
		Str("model", name).
		Strs("capabilities", requested).
		Msg("model built")
	return m, nil
}

// definitionsFor resolves names to definitions in caller order.
func (r *Registry) definitionsFor(names []string) ([]entities.CapabilityDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]entities.CapabilityDefinition, 0, len(names))
	for _, name := range names {
		def, ok := r.defs[name]
		if !ok {
			return nil, &errors.UnknownCapabilityError{Capability: name}
		}
		defs = append(defs, def)
	}
	return defs, nil
}
