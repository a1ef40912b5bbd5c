package composer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/application/composer"
	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

func identifiable() entities.CapabilityDefinition {
	return entities.NewCapability("Identifiable").
		WithRequired(entities.AttrT("id", fields.ID))
}

func temporal() entities.CapabilityDefinition {
	return entities.NewCapability("Temporal").
		WithRequired(
			entities.AttrT("created_at", fields.CreatedAt),
			entities.AttrT("updated_at", fields.UpdatedAt),
		).
		WithOptional(entities.Callable("update_timestamp"))
}

func auditable() entities.CapabilityDefinition {
	return entities.NewCapability("Auditable").
		WithOptional(entities.Attr("updated_by"), entities.Attr("version")).
		WithPrerequisites("Identifiable", "Temporal")
}

func TestComposer_Compose(t *testing.T) {
	c := composer.NewComposer()

	merged, hit, err := c.Compose([]entities.CapabilityDefinition{identifiable(), temporal()}, nil)
	require.NoError(t, err)
	assert.False(t, hit)

	t.Run("name is the composition identity", func(t *testing.T) {
		assert.Equal(t, "Identifiable+Temporal", merged.Name)
	})

	t.Run("required members merge in caller order", func(t *testing.T) {
		assert.Equal(t, []string{"id", "created_at", "updated_at"}, merged.RequiredNames())
	})

	t.Run("optional members follow", func(t *testing.T) {
		assert.Equal(t, []string{"update_timestamp"}, merged.OptionalNames())
	})

	t.Run("behaviors are preserved", func(t *testing.T) {
		assert.Equal(t, []string{"update_timestamp"}, merged.Behaviors())
	})

	t.Run("no version or module on composites", func(t *testing.T) {
		assert.Empty(t, merged.Version)
		assert.Empty(t, merged.Module)
	})
}

func TestComposer_Cache(t *testing.T) {
	c := composer.NewComposer()
	defs := []entities.CapabilityDefinition{identifiable(), temporal()}

	first, hit, err := c.Compose(defs, nil)
	require.NoError(t, err)
	require.False(t, hit)

	t.Run("identical set hits the cache", func(t *testing.T) {
		second, hit, err := c.Compose(defs, nil)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, first, second)
	})

	t.Run("order-insensitive key", func(t *testing.T) {
		reversed, hit, err := c.Compose([]entities.CapabilityDefinition{temporal(), identifiable()}, nil)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, first, reversed)
	})

	t.Run("a cached set ignores a different resolver", func(t *testing.T) {
		strict, hit, err := c.Compose(defs, composer.Strict)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, first, strict)
	})

	t.Run("reset clears the cache", func(t *testing.T) {
		c.Reset()
		_, hit, err := c.Compose(defs, nil)
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestComposer_Conflicts(t *testing.T) {
	left := entities.NewCapability("Left").
		WithRequired(entities.AttrT("shared", fields.String).WithDescription("from left"))
	right := entities.NewCapability("Right").
		WithRequired(entities.AttrT("shared", fields.Int).WithDescription("from right"))

	t.Run("first wins by default", func(t *testing.T) {
		c := composer.NewComposer()
		merged, _, err := c.Compose([]entities.CapabilityDefinition{left, right}, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"shared"}, merged.RequiredNames())
		m, _ := merged.Member("shared")
		assert.Equal(t, "from left", m.Description)
	})

	t.Run("last wins keeps the latest", func(t *testing.T) {
		c := composer.NewComposer()
		merged, _, err := c.Compose([]entities.CapabilityDefinition{left, right}, composer.LastWins)
		require.NoError(t, err)
		m, _ := merged.Member("shared")
		assert.Equal(t, "from right", m.Description)
	})

	t.Run("strict aborts", func(t *testing.T) {
		c := composer.NewComposer()
		_, _, err := c.Compose([]entities.CapabilityDefinition{left, right}, composer.Strict)
		require.Error(t, err)
		assert.ErrorContains(t, err, "shared")
	})

	t.Run("winner keeps the first occurrence position", func(t *testing.T) {
		c := composer.NewComposer()
		first := entities.NewCapability("A").WithRequired(entities.Attr("one"), entities.Attr("shared"))
		second := entities.NewCapability("B").WithRequired(entities.Attr("shared"), entities.Attr("two"))
		merged, _, err := c.Compose([]entities.CapabilityDefinition{first, second}, composer.LastWins)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "shared", "two"}, merged.RequiredNames())
	})

	t.Run("custom resolver", func(t *testing.T) {
		c := composer.NewComposer()
		pick := func(name string, previous, incoming entities.Member, owner string) (entities.Member, error) {
			return incoming.WithDescription("chosen from " + owner), nil
		}
		merged, _, err := c.Compose([]entities.CapabilityDefinition{left, right}, pick)
		require.NoError(t, err)
		m, _ := merged.Member("shared")
		assert.Equal(t, "chosen from Right", m.Description)
	})
}

func TestComposer_OptionalHandling(t *testing.T) {
	c := composer.NewComposer()

	t.Run("required shadows optional", func(t *testing.T) {
		a := entities.NewCapability("A").WithRequired(entities.Attr("x"))
		b := entities.NewCapability("B").WithOptional(entities.Attr("x"), entities.Attr("y"))
		merged, _, err := c.Compose([]entities.CapabilityDefinition{a, b}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, merged.RequiredNames())
		assert.Equal(t, []string{"y"}, merged.OptionalNames())
	})

	t.Run("required shadows optional regardless of caller order", func(t *testing.T) {
		a := entities.NewCapability("C").WithOptional(entities.Attr("x"))
		b := entities.NewCapability("D").WithRequired(entities.Attr("x"))
		merged, _, err := c.Compose([]entities.CapabilityDefinition{a, b}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, merged.RequiredNames())
		assert.Empty(t, merged.OptionalNames())
	})
}

func TestComposer_Prerequisites(t *testing.T) {
	c := composer.NewComposer()

	t.Run("union minus the composed set", func(t *testing.T) {
		merged, _, err := c.Compose([]entities.CapabilityDefinition{auditable(), identifiable()}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Temporal"}, merged.Prerequisites)
	})

	t.Run("fully closed set has no prerequisites", func(t *testing.T) {
		merged, _, err := c.Compose([]entities.CapabilityDefinition{auditable(), identifiable(), temporal()}, nil)
		require.NoError(t, err)
		assert.Empty(t, merged.Prerequisites)
	})
}

func TestComposer_Degenerate(t *testing.T) {
	c := composer.NewComposer()

	t.Run("empty input is an error", func(t *testing.T) {
		_, _, err := c.Compose(nil, nil)
		assert.Error(t, err)
	})

	t.Run("duplicate definitions collapse", func(t *testing.T) {
		merged, _, err := c.Compose([]entities.CapabilityDefinition{identifiable(), identifiable()}, composer.Strict)
		require.NoError(t, err, "a definition never conflicts with itself")
		assert.Equal(t, "Identifiable", merged.Name)
	})

	t.Run("single definition composes to itself under its own name", func(t *testing.T) {
		merged, _, err := c.Compose([]entities.CapabilityDefinition{temporal()}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Temporal", merged.Name)
		assert.Equal(t, []string{"created_at", "updated_at"}, merged.RequiredNames())
	})
}
