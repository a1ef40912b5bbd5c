package fields_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/domain/fields"
)

func TestCatalogID(t *testing.T) {
	assert.False(t, fields.ID.IsRequired())
	assert.True(t, fields.ID.IsFrozen())

	v, ok := fields.ID.ApplyDefault()
	require.True(t, ok)
	s, isString := v.(string)
	require.True(t, isString)
	_, err := uuid.Parse(s)
	assert.NoError(t, err)

	t.Run("each default is fresh", func(t *testing.T) {
		a, _ := fields.ID.ApplyDefault()
		b, _ := fields.ID.ApplyDefault()
		assert.NotEqual(t, a, b)
	})
}

func TestCatalogTimestamps(t *testing.T) {
	for _, tpl := range []*fields.FieldTemplate{fields.CreatedAt, fields.UpdatedAt} {
		v, ok := tpl.ApplyDefault()
		require.True(t, ok)
		ts, isTime := v.(time.Time)
		require.True(t, isTime)
		assert.Equal(t, time.UTC, ts.Location())
		assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
	}
}

func TestCatalogEmbedding(t *testing.T) {
	assert.NoError(t, fields.Embedding.ValidateValue([]float64{0.1, 0.2}))
	assert.Error(t, fields.Embedding.ValidateValue(0.1), "scalars are rejected")

	v, ok := fields.Embedding.ApplyDefault()
	require.True(t, ok)
	assert.Equal(t, []float64{}, v)
}

func TestCatalogMetadataField(t *testing.T) {
	v, ok := fields.MetadataField.ApplyDefault()
	require.True(t, ok)
	m, isMap := v.(map[string]any)
	require.True(t, isMap)
	assert.Empty(t, m)

	t.Run("defaults do not share state", func(t *testing.T) {
		a, _ := fields.MetadataField.ApplyDefault()
		a.(map[string]any)["k"] = "v"
		b, _ := fields.MetadataField.ApplyDefault()
		assert.Empty(t, b.(map[string]any))
	})
}

func TestCatalogEmail(t *testing.T) {
	assert.NoError(t, fields.Email.ValidateValue("alice@example.com"))

	for _, bad := range []string{"", "alice", "alice@", "@example.com", "a b@example.com", "alice@example"} {
		assert.Error(t, fields.Email.ValidateValue(bad), "value %q", bad)
	}
}

func TestCatalogPercentage(t *testing.T) {
	assert.NoError(t, fields.Percentage.ValidateValue(0.0))
	assert.NoError(t, fields.Percentage.ValidateValue(55.5))
	assert.NoError(t, fields.Percentage.ValidateValue(100.0))

	assert.Error(t, fields.Percentage.ValidateValue(-0.5))
	assert.Error(t, fields.Percentage.ValidateValue(100.5))
}

func TestCatalogScalars(t *testing.T) {
	assert.True(t, fields.String.IsRequired())
	assert.True(t, fields.Int.IsRequired())
	assert.True(t, fields.Float.IsRequired())
	assert.True(t, fields.Bool.IsRequired())
	assert.True(t, fields.Timestamp.IsRequired())
	assert.False(t, fields.Any.IsRequired())
	assert.NoError(t, fields.Any.ValidateValue(nil))
}
