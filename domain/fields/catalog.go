package fields

import (
	"time"

	"github.com/google/uuid"
)

// Catalog of reusable templates. Templates are immutable, so sharing the
// package-level instances is safe; derive with With, AsNullable or
// AsListable instead of mutating.
var (
	// String is a bare required string field.
	String = MustTemplateOf[string]()

	// Int is a bare required integer field.
	Int = MustTemplateOf[int64]()

	// Float is a bare required floating-point field.
	Float = MustTemplateOf[float64]()

	// Bool is a bare required boolean field.
	Bool = MustTemplateOf[bool]()

	// Timestamp is a bare required time field.
	Timestamp = MustTemplateOf[time.Time]()

	// Any admits any value.
	Any = MustTemplate(anyType, WithNullable(true))

	// ID is a frozen string identifier defaulting to a fresh UUID.
	ID = MustTemplateOf[string](
		WithDescription("Unique identifier"),
		WithFrozen(true),
		WithDefaultFactory(func() any { return uuid.NewString() }),
	)

	// CreatedAt records when an entity came into existence.
	CreatedAt = MustTemplateOf[time.Time](
		WithDescription("Creation timestamp"),
		WithDefaultFactory(func() any { return time.Now().UTC() }),
	)

	// UpdatedAt records the most recent mutation of an entity.
	UpdatedAt = MustTemplateOf[time.Time](
		WithDescription("Last update timestamp"),
		WithDefaultFactory(func() any { return time.Now().UTC() }),
	)

	// Embedding is a strict vector of float64 components, empty by default.
	Embedding = MustTemplateOf[float64](
		WithDescription("Embedding vector"),
		WithListable(true, true),
		WithDefaultFactory(func() any { return []float64{} }),
	)

	// MetadataField is a free-form string-keyed map, empty by default.
	MetadataField = MustTemplateOf[map[string]any](
		WithDescription("Additional metadata"),
		WithDefaultFactory(func() any { return map[string]any{} }),
	)

	// Email is a string field constrained to a plausible address shape.
	Email = MustTemplateOf[string](
		WithDescription("Email address"),
		WithValidator(MustConstraintValidator(
			`{"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"}`,
		)),
	)

	// Percentage is a float field constrained to the closed range 0..100.
	Percentage = MustTemplateOf[float64](
		WithDescription("Percentage between 0 and 100"),
		WithValidator(MustConstraintValidator(
			`{"type": "number", "minimum": 0, "maximum": 100}`,
		)),
	)
)
