package fields_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

func TestSchemaBuilder(t *testing.T) {
	t.Run("builds in insertion order", func(t *testing.T) {
		s, err := fields.NewSchemaBuilder("Event").
			AddField("id", fields.ID).
			AddField("kind", fields.String).
			AddField("payload", fields.MetadataField).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "Event", s.Name())
		assert.Equal(t, []string{"id", "kind", "payload"}, s.FieldNames())
	})

	t.Run("overrides apply per field", func(t *testing.T) {
		s, err := fields.NewSchemaBuilder("S").
			AddField("note", fields.String, fields.WithDefault("n/a")).
			Build()
		require.NoError(t, err)
		tpl, _ := s.Field("note")
		assert.False(t, tpl.IsRequired())
	})

	t.Run("redefining a field keeps its position", func(t *testing.T) {
		s, err := fields.NewSchemaBuilder("S").
			AddField("a", fields.String).
			AddField("b", fields.Int).
			AddField("a", fields.Bool).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, s.FieldNames())
		tpl, _ := s.Field("a")
		assert.True(t, fields.Bool.Equal(tpl))
	})

	t.Run("errors accumulate and surface on build", func(t *testing.T) {
		_, err := fields.NewSchemaBuilder("S").
			AddField("9bad", fields.String).
			AddField("ok", fields.Int).
			AddField("also bad", fields.Bool).
			Build()
		require.Error(t, err)
		var ce *errors.FieldContractError
		assert.ErrorAs(t, err, &ce)
		assert.ErrorContains(t, err, "9bad")
		assert.ErrorContains(t, err, "also bad")
	})

	t.Run("empty schema name is rejected", func(t *testing.T) {
		_, err := fields.NewSchemaBuilder("").AddField("x", fields.String).Build()
		require.Error(t, err)
	})

	t.Run("extend pulls in an existing schema", func(t *testing.T) {
		base, err := fields.CreateSchema("Base",
			fields.Field{Name: "id", Template: fields.String},
			fields.Field{Name: "at", Template: fields.Timestamp},
		)
		require.NoError(t, err)

		s, err := fields.NewSchemaBuilder("Derived").
			Extend(base).
			AddField("extra", fields.Bool).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "at", "extra"}, s.FieldNames())
	})

	t.Run("add prepared fields", func(t *testing.T) {
		f, err := fields.ID.CreateField("id")
		require.NoError(t, err)
		s, err := fields.NewSchemaBuilder("S").AddFields(f).Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, s.FieldNames())
	})
}

func TestCreateSchema(t *testing.T) {
	t.Run("valid fields", func(t *testing.T) {
		s, err := fields.CreateSchema("Pair",
			fields.Field{Name: "left", Template: fields.String},
			fields.Field{Name: "right", Template: fields.String},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"left", "right"}, s.FieldNames())
	})

	t.Run("invalid field name fails", func(t *testing.T) {
		_, err := fields.CreateSchema("Pair", fields.Field{Name: "not ok", Template: fields.String})
		require.Error(t, err)
	})
}
