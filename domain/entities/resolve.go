package entities

// ConflictResolver arbitrates between two members of the same name
// contributed by different capabilities during composition. owner names the
// capability contributing incoming. Returning an error aborts the
// composition.
type ConflictResolver func(name string, previous, incoming Member, owner string) (Member, error)

// DefinitionSource resolves a capability name to its definition. The
// registry's lookup satisfies this, and tests substitute fixed maps.
type DefinitionSource func(name string) (CapabilityDefinition, bool)
