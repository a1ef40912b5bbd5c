package ports

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/domain/entities"
)

// MockStructuralValidator is a mock implementation of StructuralValidator
// for testing.
type MockStructuralValidator struct {
	ValidateFunc func(t reflect.Type, def entities.CapabilityDefinition) error
}

func (m *MockStructuralValidator) Validate(t reflect.Type, def entities.CapabilityDefinition) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(t, def)
	}
	return nil
}

// Compile-time interface check
var _ StructuralValidator = (*MockStructuralValidator)(nil)

func TestMockStructuralValidator(t *testing.T) {
	t.Run("default accepts", func(t *testing.T) {
		mock := &MockStructuralValidator{}
		assert.NoError(t, mock.Validate(reflect.TypeOf(0), entities.NewCapability("X")))
	})

	t.Run("custom behavior", func(t *testing.T) {
		mock := &MockStructuralValidator{
			ValidateFunc: func(reflect.Type, entities.CapabilityDefinition) error {
				return assert.AnError
			},
		}
		assert.Error(t, mock.Validate(reflect.TypeOf(0), entities.NewCapability("X")))
	})
}

func TestNopMetrics(t *testing.T) {
	var m Metrics = NopMetrics{}
	require.NotNil(t, m)

	// Every method is a no-op; calling them must not panic.
	m.CapabilitiesDefined(1)
	m.RegistrationRecorded("Identifiable", "accepted")
	m.LookupRecorded()
	m.ActiveImplementations(2)
	m.CompositionRecorded(true)
	m.OrphansSwept(3)
}
