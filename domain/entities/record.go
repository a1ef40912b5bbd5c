package entities

import (
	"time"

	"github.com/google/uuid"
)

// Token is an opaque handle identifying one registered type. A type is
// allocated exactly one token on its first registration and keeps it across
// subsequent capability registrations.
type Token string

// NewToken allocates a fresh token.
func NewToken() Token {
	return Token(uuid.NewString())
}

// ImplementationRecord captures one (capability, type) registration. The
// record deliberately holds no reference to the type itself; liveness is
// tracked per token on the registry side.
type ImplementationRecord struct {
	// Capability is the registered capability name.
	Capability string `json:"capability"`

	// Token identifies the implementing type.
	Token Token `json:"token"`

	// TypeName is the diagnostic "pkgpath.Name" of the implementing type.
	TypeName string `json:"type_name"`

	// RegisteredAt is when the registration was accepted.
	RegisteredAt time.Time `json:"registered_at"`
}

// NewImplementationRecord creates a record stamped with the current time.
func NewImplementationRecord(capability string, token Token, typeName string) ImplementationRecord {
	return ImplementationRecord{
		Capability:   capability,
		Token:        token,
		TypeName:     typeName,
		RegisteredAt: time.Now().UTC(),
	}
}
