// Package traitkit composes capability contracts over plain Go types and
// synthesizes runtime models from their field schemas.
//
// The package-level functions operate on a process-default registry, which
// covers the common case of one capability space per process. Construct a
// registry.Registry directly when you need isolated spaces or custom
// validation wiring.
package traitkit

import (
	"sync"

	"github.com/traitkit-dev/traitkit/application/model"
	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/fields"
	"github.com/traitkit-dev/traitkit/registry"
)

// Version of the traitkit module.
const Version = "0.1.0"

// Re-exported so common flows need only the root import.
type (
	// CapabilityDefinition is re-exported from domain/entities.
	CapabilityDefinition = entities.CapabilityDefinition
	// Member is re-exported from domain/entities.
	Member = entities.Member
	// Field is re-exported from domain/fields.
	Field = fields.Field
	// FieldTemplate is re-exported from domain/fields.
	FieldTemplate = fields.FieldTemplate
	// Schema is re-exported from domain/fields.
	Schema = fields.Schema
	// Model is re-exported from application/model.
	Model = model.Model
	// Instance is re-exported from application/model.
	Instance = model.Instance
	// Registry is re-exported from registry.
	Registry = registry.Registry
)

var (
	defaultMu sync.RWMutex
	std       = registry.New()
)

// Default returns the process-default registry.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}

// Reset installs a fresh process-default registry, discarding all
// definitions and registrations. Intended for test isolation.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	std = registry.New()
}

// Define adds a capability definition to the default registry.
func Define(def CapabilityDefinition) error {
	return Default().Define(def)
}

// MustDefine is Define that panics on error.
func MustDefine(def CapabilityDefinition) {
	if err := Define(def); err != nil {
		panic(err)
	}
}

// Attach registers a candidate type as an implementation of the named
// capabilities on the default registry. The batch is validated as a whole
// and either fully applied or fully rejected.
func Attach(candidate any, names ...string) error {
	return Default().Register(candidate, names...)
}

// MustAttach is Attach that panics on error. Calling it from an init
// function ties a failed registration to the type's own definition, so a
// non-conformant type fails at program start instead of first use.
func MustAttach(candidate any, names ...string) {
	if err := Attach(candidate, names...); err != nil {
		panic(err)
	}
}

// HasCapability reports whether the candidate implements the named
// capability, either through registration or structurally.
func HasCapability(candidate any, name string) bool {
	return Default().HasCapability(candidate, name)
}

// CapabilitiesOf returns the sorted capability names the candidate is
// registered under on the default registry.
func CapabilitiesOf(candidate any) []string {
	return Default().Capabilities(candidate)
}

// BuildModel composes the named capabilities on the default registry and
// synthesizes a model carrying their attribute fields plus any extras.
func BuildModel(name string, capabilities []string, extra ...Field) (*Model, error) {
	return Default().BuildModel(name, capabilities, extra...)
}
