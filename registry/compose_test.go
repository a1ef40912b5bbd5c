package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
	"github.com/traitkit-dev/traitkit/registry"
)

func TestRegistry_Compose(t *testing.T) {
	t.Run("merges definitions under the composition identity", func(t *testing.T) {
		r := newPopulated(t)

		composed, err := r.Compose("Identifiable", "Temporal")
		require.NoError(t, err)

		assert.Equal(t, "Identifiable+Temporal", composed.Name)
		assert.Equal(t, []string{"id", "created_at", "updated_at"}, composed.RequiredNames())
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		r := newPopulated(t)

		var unknown *errors.UnknownCapabilityError
		_, err := r.Compose("Identifiable", "Ghost")
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Ghost", unknown.Capability)
	})

	t.Run("custom resolvers see member conflicts", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.Define(entities.NewCapability("Left").
			WithRequired(entities.Attr("shared").WithDescription("from left"))))
		require.NoError(t, r.Define(entities.NewCapability("Right").
			WithRequired(entities.Attr("shared").WithDescription("from right"))))

		resolver := func(name string, previous, incoming entities.Member, owner string) (entities.Member, error) {
			return incoming, nil
		}
		composed, err := r.ComposeWith(resolver, "Left", "Right")
		require.NoError(t, err)

		member, ok := composed.Member("shared")
		require.True(t, ok)
		assert.Equal(t, "from right", member.Description)
	})

	t.Run("composes without any registrations", func(t *testing.T) {
		r := newPopulated(t)

		composed, err := r.Compose("Temporal")
		require.NoError(t, err)
		assert.Equal(t, "Temporal", composed.Name)
	})
}

func TestRegistry_BuildModel(t *testing.T) {
	t.Run("builds a model over the composed capabilities", func(t *testing.T) {
		r := newPopulated(t)

		m, err := r.BuildModel("TrackedDocument", []string{"Identifiable", "Temporal"})
		require.NoError(t, err)

		s := m.Schema()
		assert.Equal(t, "TrackedDocument", s.Name())
		assert.Equal(t, []string{"id", "created_at", "updated_at"}, s.FieldNames())
	})

	t.Run("records the capability set in schema metadata", func(t *testing.T) {
		r := newPopulated(t)

		m, err := r.BuildModel("TrackedDocument", []string{"Temporal", "Identifiable"})
		require.NoError(t, err)

		caps, ok := m.Schema().Meta("capabilities")
		require.True(t, ok)
		assert.Equal(t, []string{"Identifiable", "Temporal"}, caps)
	})

	t.Run("registers the synthesized type for every capability", func(t *testing.T) {
		r := newPopulated(t)

		m, err := r.BuildModel("TrackedDocument", []string{"Identifiable", "Temporal"})
		require.NoError(t, err)

		assert.Equal(t, []string{"Identifiable", "Temporal"}, r.Capabilities(m.GoType()))
		assert.True(t, r.HasCapability(m.GoType(), "Identifiable"))
		assert.Equal(t, []string{"Identifiable", "Temporal"}, m.Capabilities())
	})

	t.Run("appends extra fields after capability fields", func(t *testing.T) {
		r := newPopulated(t)

		m, err := r.BuildModel("TitledDocument", []string{"Identifiable"},
			fields.Field{Name: "title", Template: fields.String})
		require.NoError(t, err)

		assert.Equal(t, []string{"id", "title"}, m.Schema().FieldNames())
	})

	t.Run("declared-only attributes get the Any template", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.Define(entities.NewCapability("Payloaded").
			WithRequired(entities.Attr("payload"))))

		m, err := r.BuildModel("Envelope", []string{"Payloaded"})
		require.NoError(t, err)

		tpl, ok := m.Schema().Field("payload")
		require.True(t, ok)
		assert.True(t, tpl.IsNullable())

		in, err := m.New(nil)
		require.NoError(t, err)
		v, err := in.Get("payload")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("callable members become model behaviors", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.Define(entities.NewCapability("Invokable").
			WithRequired(
				entities.Attr("handler_name"),
				entities.Callable("invoke"),
			)))

		m, err := r.BuildModel("Task", []string{"Invokable"})
		require.NoError(t, err)

		assert.Equal(t, []string{"invoke"}, m.Behaviors())
		assert.Equal(t, []string{"handler_name"}, m.Schema().FieldNames())
		assert.True(t, r.HasCapability(m.GoType(), "Invokable"))
	})

	t.Run("member descriptions flow into the schema", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.Define(entities.NewCapability("Described").
			WithRequired(entities.Attr("subject").WithDescription("What this is about"))))

		m, err := r.BuildModel("Note", []string{"Described"})
		require.NoError(t, err)

		tpl, ok := m.Schema().Field("subject")
		require.True(t, ok)
		assert.Equal(t, "What this is about", tpl.Description())
	})

	t.Run("rejects sets with unresolved prerequisites", func(t *testing.T) {
		r := newPopulated(t)

		_, err := r.BuildModel("Broken", []string{"Temporal"})
		var dep *errors.DependencyError
		require.ErrorAs(t, err, &dep)
		assert.Equal(t, []string{"Identifiable"}, dep.Missing)
	})

	t.Run("rejects unknown capabilities", func(t *testing.T) {
		r := newPopulated(t)

		var unknown *errors.UnknownCapabilityError
		_, err := r.BuildModel("Broken", []string{"Ghost"})
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("rejects an empty capability set", func(t *testing.T) {
		r := newPopulated(t)

		_, err := r.BuildModel("Empty", nil)
		assert.Error(t, err)
	})

	t.Run("instances honor the composed templates", func(t *testing.T) {
		r := newPopulated(t)

		m, err := r.BuildModel("TrackedDocument", []string{"Identifiable", "Temporal"})
		require.NoError(t, err)

		in, err := m.New(nil)
		require.NoError(t, err)

		id, err := in.Get("id")
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		created, err := in.Get("created_at")
		require.NoError(t, err)
		assert.NotZero(t, created)
	})
}
