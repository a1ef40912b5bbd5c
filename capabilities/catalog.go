// Package capabilities ships the standard capability catalog: the small set
// of contracts most model-bearing services need. Deployments define them
// through Register and seal whichever ones their config bundles freeze.
package capabilities

import (
	"fmt"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/fields"
	"github.com/traitkit-dev/traitkit/registry"
)

// Module is the declaring module path of the catalog. The default registry
// guard treats it as local, so catalog capabilities attach to any type.
const Module = "github.com/traitkit-dev/traitkit/capabilities"

// Identifiable marks types carrying a unique identifier.
func Identifiable() entities.CapabilityDefinition {
	return entities.NewCapability("Identifiable").
		WithVersion("1.0.0").
		WithDescription("Carries a unique identifier").
		WithModule(Module).
		WithRequired(entities.AttrT("id", fields.ID))
}

// Temporal marks types tracking creation and update timestamps.
func Temporal() entities.CapabilityDefinition {
	return entities.NewCapability("Temporal").
		WithVersion("1.0.0").
		WithDescription("Tracks creation and update timestamps").
		WithModule(Module).
		WithRequired(
			entities.AttrT("created_at", fields.CreatedAt),
			entities.AttrT("updated_at", fields.UpdatedAt),
		).
		WithOptional(entities.Callable("update_timestamp"))
}

// Auditable marks types whose changes are attributable. It adds nothing
// structurally; it presumes identity and timestamps and optionally records
// who changed what.
func Auditable() entities.CapabilityDefinition {
	return entities.NewCapability("Auditable").
		WithVersion("1.0.0").
		WithDescription("Attributable change tracking over identity and timestamps").
		WithModule(Module).
		WithPrerequisites("Identifiable", "Temporal").
		WithOptional(
			entities.AttrT("updated_by", fields.String.AsNullable()),
			entities.AttrT("version", fields.Int),
		)
}

// Embeddable marks types carrying a vector embedding.
func Embeddable() entities.CapabilityDefinition {
	return entities.NewCapability("Embeddable").
		WithVersion("1.0.0").
		WithDescription("Carries a vector embedding").
		WithModule(Module).
		WithRequired(entities.AttrT("embedding", fields.Embedding))
}

// Invokable marks types that can be invoked as a unit of work.
func Invokable() entities.CapabilityDefinition {
	return entities.NewCapability("Invokable").
		WithVersion("1.0.0").
		WithDescription("Invocable unit of work with an optional execution record").
		WithModule(Module).
		WithRequired(entities.Callable("invoke")).
		WithOptional(entities.AttrT("execution", fields.Any))
}

// Cryptographical marks types carrying a content hash.
func Cryptographical() entities.CapabilityDefinition {
	return entities.NewCapability("Cryptographical").
		WithVersion("1.0.0").
		WithDescription("Carries a SHA-256 content hash").
		WithModule(Module).
		WithRequired(entities.AttrT("sha256", fields.String.AsNullable())).
		WithOptional(entities.Callable("compute_sha256"))
}

// All returns the catalog in declaration order.
func All() []entities.CapabilityDefinition {
	return []entities.CapabilityDefinition{
		Identifiable(),
		Temporal(),
		Auditable(),
		Embeddable(),
		Invokable(),
		Cryptographical(),
	}
}

// Names returns the catalog capability names in declaration order.
func Names() []string {
	defs := All()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// Register defines the whole catalog on the registry. Definitions are not
// sealed; deployments seal via config bundles or explicitly.
func Register(r *registry.Registry) error {
	for _, def := range All() {
		if err := r.Define(def); err != nil {
			return fmt.Errorf("define %s: %w", def.Name, err)
		}
	}
	return nil
}
