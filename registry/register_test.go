package registry_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/application/coherence"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/registry"
)

func newPopulated(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Define(defIdentifiable()))
	require.NoError(t, r.Define(defTemporal()))
	return r
}

func TestRegistry_Register(t *testing.T) {
	t.Run("accepts a conformant type", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}, "Identifiable"))
		assert.Equal(t, []string{"Identifiable"}, r.Capabilities(document{}))
	})

	t.Run("rejects unknown capabilities before validating", func(t *testing.T) {
		r := newPopulated(t)

		var unknown *errors.UnknownCapabilityError
		err := r.Register(document{}, "Identifiable", "Ghost")
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Ghost", unknown.Capability)
		assert.Nil(t, r.Capabilities(document{}))
	})

	t.Run("rejects structurally missing members", func(t *testing.T) {
		r := newPopulated(t)

		err := r.Register(plainItem{}, "Identifiable")
		var structural *errors.StructuralError
		require.ErrorAs(t, err, &structural)
		assert.Equal(t, "Identifiable", structural.Capability)
		assert.Equal(t, []string{"id"}, structural.Missing)
	})

	t.Run("rejects incoherent registrations", func(t *testing.T) {
		guard, err := coherence.NewGuard("example.com/local/**")
		require.NoError(t, err)
		r := registry.New(registry.WithCoherenceGuard(guard))

		foreign := defIdentifiable().WithModule("github.com/elsewhere/caps")
		require.NoError(t, r.Define(foreign))

		regErr := r.Register(document{}, "Identifiable")
		var incoherent *errors.CoherenceError
		require.ErrorAs(t, regErr, &incoherent)
		assert.Equal(t, "github.com/elsewhere/caps", incoherent.CapabilityModule)
	})

	t.Run("rejects missing prerequisites", func(t *testing.T) {
		r := newPopulated(t)

		err := r.Register(document{}, "Temporal")
		var dep *errors.DependencyError
		require.ErrorAs(t, err, &dep)
		assert.Equal(t, "Temporal", dep.Capability)
		assert.Equal(t, []string{"Identifiable"}, dep.Missing)
	})

	t.Run("prerequisites may come from the same batch", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}, "Temporal", "Identifiable"))
		assert.Equal(t, []string{"Identifiable", "Temporal"}, r.Capabilities(document{}))
	})

	t.Run("prerequisites may come from earlier registrations", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}, "Identifiable"))
		require.NoError(t, r.Register(document{}, "Temporal"))
		assert.Equal(t, []string{"Identifiable", "Temporal"}, r.Capabilities(document{}))
	})

	t.Run("a rejected batch leaves the registry untouched", func(t *testing.T) {
		r := newPopulated(t)

		err := r.Register(document{}, "Identifiable", "Ghost")
		require.Error(t, err)

		assert.Nil(t, r.Capabilities(document{}))
		assert.Zero(t, r.Stats().ActiveImplementations)
		assert.Zero(t, r.Stats().Registrations)
	})

	t.Run("re-registration is an idempotent no-op", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}, "Identifiable"))
		require.NoError(t, r.Register(document{}, "Identifiable"))

		assert.Equal(t, []string{"Identifiable"}, r.Capabilities(document{}))
		stats := r.Stats()
		assert.Equal(t, int64(2), stats.Registrations)
		assert.Equal(t, int64(1), stats.ActiveImplementations)
	})

	t.Run("duplicate names in one call collapse", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}, "Identifiable", "Identifiable"))
		assert.Equal(t, int64(1), r.Stats().Registrations)
	})

	t.Run("a reflect.Type candidate is the same registration target", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(reflect.TypeOf(document{}), "Identifiable"))
		assert.Equal(t, []string{"Identifiable"}, r.Capabilities(document{}))
	})

	t.Run("rejects nil candidates", func(t *testing.T) {
		r := newPopulated(t)
		assert.Error(t, r.Register(nil, "Identifiable"))
	})

	t.Run("no names is a no-op", func(t *testing.T) {
		r := newPopulated(t)

		require.NoError(t, r.Register(document{}))
		assert.Zero(t, r.Stats().Registrations)
	})
}

func TestRegistry_HasCapability(t *testing.T) {
	r := newPopulated(t)
	require.NoError(t, r.Register(document{}, "Identifiable"))

	t.Run("sees live registrations", func(t *testing.T) {
		assert.True(t, r.HasCapability(document{}, "Identifiable"))
	})

	t.Run("falls back to structural conformance for unregistered types", func(t *testing.T) {
		assert.True(t, r.HasCapability(document{}, "Temporal"))
	})

	t.Run("rejects non-conformant types", func(t *testing.T) {
		assert.False(t, r.HasCapability(plainItem{}, "Identifiable"))
	})

	t.Run("unknown capabilities are false", func(t *testing.T) {
		assert.False(t, r.HasCapability(document{}, "Ghost"))
	})

	t.Run("nil candidates are false", func(t *testing.T) {
		assert.False(t, r.HasCapability(nil, "Identifiable"))
	})
}

func TestRegistry_RetireAndCleanup(t *testing.T) {
	t.Run("retire hides registrations immediately", func(t *testing.T) {
		r := newPopulated(t)
		require.NoError(t, r.Register(document{}, "Identifiable"))

		assert.True(t, r.Retire(document{}))
		assert.Nil(t, r.Capabilities(document{}))
		assert.Zero(t, r.Stats().ActiveImplementations)
	})

	t.Run("retire reports false when nothing was live", func(t *testing.T) {
		r := newPopulated(t)

		assert.False(t, r.Retire(document{}))
		assert.False(t, r.Retire(nil))

		require.NoError(t, r.Register(document{}, "Identifiable"))
		assert.True(t, r.Retire(document{}))
		assert.False(t, r.Retire(document{}))
	})

	t.Run("cleanup removes retired records and reports the count", func(t *testing.T) {
		r := newPopulated(t)
		require.NoError(t, r.Register(document{}, "Identifiable", "Temporal"))
		require.True(t, r.Retire(document{}))

		assert.Equal(t, 2, r.CleanupOrphanedReferences())
		assert.Equal(t, 0, r.CleanupOrphanedReferences())
	})

	t.Run("re-registration before cleanup revives the records", func(t *testing.T) {
		r := newPopulated(t)
		require.NoError(t, r.Register(document{}, "Identifiable"))
		require.True(t, r.Retire(document{}))

		require.NoError(t, r.Register(document{}, "Identifiable"))

		assert.Equal(t, 0, r.CleanupOrphanedReferences())
		assert.Equal(t, []string{"Identifiable"}, r.Capabilities(document{}))
	})

	t.Run("a swept type can register again", func(t *testing.T) {
		r := newPopulated(t)
		require.NoError(t, r.Register(document{}, "Identifiable"))
		require.True(t, r.Retire(document{}))
		require.Equal(t, 1, r.CleanupOrphanedReferences())

		require.NoError(t, r.Register(document{}, "Identifiable"))
		assert.Equal(t, []string{"Identifiable"}, r.Capabilities(document{}))
	})
}

func TestRegistry_Metrics(t *testing.T) {
	metrics := &captureMetrics{}
	r := registry.New(registry.WithMetrics(metrics))
	require.NoError(t, r.Define(defIdentifiable()))
	require.NoError(t, r.Define(defTemporal()))

	t.Run("definition count", func(t *testing.T) {
		assert.Equal(t, 2, metrics.defined)
	})

	t.Run("accepted outcomes carry the capability", func(t *testing.T) {
		require.NoError(t, r.Register(document{}, "Identifiable"))
		assert.Contains(t, metrics.outcomes, "Identifiable:accepted")
		assert.Equal(t, 1, metrics.active)
	})

	t.Run("rejections carry the reason", func(t *testing.T) {
		require.Error(t, r.Register(plainItem{}, "Identifiable"))
		assert.Contains(t, metrics.outcomes, "Identifiable:structural")
	})

	t.Run("lookups are counted", func(t *testing.T) {
		before := metrics.lookups
		r.HasCapability(document{}, "Identifiable")
		r.Capabilities(document{})
		assert.Equal(t, before+2, metrics.lookups)
	})

	t.Run("compositions record cache hits", func(t *testing.T) {
		_, err := r.Compose("Identifiable", "Temporal")
		require.NoError(t, err)
		_, err = r.Compose("Temporal", "Identifiable")
		require.NoError(t, err)
		assert.Equal(t, []bool{false, true}, metrics.compositions)
	})

	t.Run("sweeps record their size", func(t *testing.T) {
		require.True(t, r.Retire(document{}))
		r.CleanupOrphanedReferences()
		assert.Equal(t, []int{1}, metrics.swept)
	})
}

func TestRegistry_UnknownCapabilityOutcomeNotRecorded(t *testing.T) {
	metrics := &captureMetrics{}
	r := registry.New(registry.WithMetrics(metrics))
	require.NoError(t, r.Define(defIdentifiable()))

	require.Error(t, r.Register(document{}, "Ghost"))
	for _, outcome := range metrics.outcomes {
		assert.NotContains(t, outcome, "Ghost")
	}
}
