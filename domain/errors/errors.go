// Package errors provides the domain error taxonomy for the capability engine.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

// Reason classifies why a registration was rejected.
type Reason string

const (
	ReasonStructural Reason = "structural"
	ReasonCoherence  Reason = "coherence"
	ReasonDependency Reason = "dependency"
	ReasonDuplicate  Reason = "duplicate"
	ReasonSealed     Reason = "sealed"
)

// Rejection is the structured outcome of a failed registration. Every
// rejection carries a reason code plus the specific missing or conflicting
// names so the caller can decide whether to fix the capability, fix the
// candidate type, or reorder composition.
type Rejection struct {
	Reason     Reason   `json:"reason"`
	Capability string   `json:"capability,omitempty"`
	Candidate  string   `json:"candidate,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Message    string   `json:"message"`
}

// RejectionError is an interface for error types that describe a registration
// rejection. New rejection classes only need to implement this interface
// without modifying ToRejection.
type RejectionError interface {
	error
	Rejection() Rejection
}

// ToRejection converts an error into a structured Rejection. It reports false
// for nil errors and for errors that are not registration rejections
// (argument and contract errors).
func ToRejection(err error) (Rejection, bool) {
	if err == nil {
		return Rejection{}, false
	}
	var re RejectionError
	if stdErrors.As(err, &re) {
		return re.Rejection(), true
	}
	return Rejection{}, false
}

// StructuralError reports that a candidate type does not expose every required
// member of a capability.
type StructuralError struct {
	Capability string
	Candidate  string
	Missing    []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("type %s does not satisfy capability %s: missing %s",
		e.Candidate, e.Capability, strings.Join(e.Missing, ", "))
}

// Rejection implements RejectionError.
func (e *StructuralError) Rejection() Rejection {
	return Rejection{
		Reason:     ReasonStructural,
		Capability: e.Capability,
		Candidate:  e.Candidate,
		Missing:    e.Missing,
		Message:    e.Error(),
	}
}

// CoherenceError reports an orphan-rule violation: neither the capability nor
// the candidate type is local to the registering party.
type CoherenceError struct {
	Capability       string
	Candidate        string
	CapabilityModule string
	CandidateModule  string
}

func (e *CoherenceError) Error() string {
	return fmt.Sprintf("cannot attach %s (module %q) to foreign type %s (module %q): either the capability or the type must be local",
		e.Capability, e.CapabilityModule, e.Candidate, e.CandidateModule)
}

// Rejection implements RejectionError.
func (e *CoherenceError) Rejection() Rejection {
	return Rejection{
		Reason:     ReasonCoherence,
		Capability: e.Capability,
		Candidate:  e.Candidate,
		Message:    e.Error(),
	}
}

// DependencyError reports prerequisites that are neither registered on the
// candidate nor part of the requested set.
type DependencyError struct {
	Capability string
	Candidate  string
	Missing    []string
}

func (e *DependencyError) Error() string {
	if e.Candidate != "" {
		return fmt.Sprintf("capability %s on type %s requires missing prerequisites: %s",
			e.Capability, e.Candidate, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("capability %s requires missing prerequisites: %s",
		e.Capability, strings.Join(e.Missing, ", "))
}

// Rejection implements RejectionError.
func (e *DependencyError) Rejection() Rejection {
	return Rejection{
		Reason:     ReasonDependency,
		Capability: e.Capability,
		Candidate:  e.Candidate,
		Missing:    e.Missing,
		Message:    e.Error(),
	}
}

// DuplicateError reports a definition name collision that the registry's
// overwrite policy does not permit.
type DuplicateError struct {
	Capability string
	Existing   string // version of the definition already in place, if any
}

func (e *DuplicateError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("capability %s is already defined (version %s)", e.Capability, e.Existing)
	}
	return fmt.Sprintf("capability %s is already defined", e.Capability)
}

// Rejection implements RejectionError.
func (e *DuplicateError) Rejection() Rejection {
	return Rejection{
		Reason:     ReasonDuplicate,
		Capability: e.Capability,
		Message:    e.Error(),
	}
}

// SealedError reports a member mutation attempt on a sealed capability.
// Sealing forbids further member changes, not new type registrations.
type SealedError struct {
	Capability string
}

func (e *SealedError) Error() string {
	return fmt.Sprintf("capability %s is sealed", e.Capability)
}

// Rejection implements RejectionError.
func (e *SealedError) Rejection() Rejection {
	return Rejection{
		Reason:     ReasonSealed,
		Capability: e.Capability,
		Message:    e.Error(),
	}
}

// FieldContractError reports a violated field template contract: conflicting
// default and default factory, an invalid field name, or an illegal override
// of a frozen template.
type FieldContractError struct {
	Field  string
	Reason string
}

func (e *FieldContractError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field contract violation for %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field contract violation: %s", e.Reason)
}

// ValidationError reports a value that failed a field's validation contract.
type ValidationError struct {
	Err    error
	Field  string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, msg)
	}
	return fmt.Sprintf("validation failed: %s", msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UnknownCapabilityError reports an operation that named a capability with no
// definition in the registry. It is an argument error, not a rejection.
type UnknownCapabilityError struct {
	Capability string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability: %s", e.Capability)
}

// InvalidDefinitionError reports a malformed capability definition handed to
// Define.
type InvalidDefinitionError struct {
	Capability string
	Reason     string
}

func (e *InvalidDefinitionError) Error() string {
	if e.Capability != "" {
		return fmt.Sprintf("invalid capability definition %s: %s", e.Capability, e.Reason)
	}
	return fmt.Sprintf("invalid capability definition: %s", e.Reason)
}

// ConfigError represents a bundle loading or validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
