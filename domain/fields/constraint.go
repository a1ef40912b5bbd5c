package fields

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/traitkit-dev/traitkit/domain/errors"
)

// ConstraintValidator compiles a JSON Schema fragment into a Validator.
// Values are normalized through a JSON round trip before validation so
// Go-native values validate the way their JSON form would.
func ConstraintValidator(schemaJSON string) (Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("constraint.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add constraint resource: %w", err)
	}
	sch, err := compiler.Compile("constraint.json")
	if err != nil {
		return nil, fmt.Errorf("compile constraint: %w", err)
	}

	return func(value any) error {
		b, err := json.Marshal(value)
		if err != nil {
			return &errors.ValidationError{
				Err:    err,
				Reason: "value is not JSON-representable",
				Value:  value,
			}
		}
		var obj any
		if err := json.Unmarshal(b, &obj); err != nil {
			return &errors.ValidationError{Err: err, Value: value}
		}
		if err := sch.Validate(obj); err != nil {
			var ve *jsonschema.ValidationError
			if stdErrors.As(err, &ve) {
				return &errors.ValidationError{Err: ve, Reason: leafMessage(ve), Value: value}
			}
			return &errors.ValidationError{Err: err, Value: value}
		}
		return nil
	}, nil
}

// MustConstraintValidator is ConstraintValidator that panics on compilation
// failure. Intended for package-level template catalogs.
func MustConstraintValidator(schemaJSON string) Validator {
	v, err := ConstraintValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// leafMessage digs to the most specific cause of a validation failure.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Message
}
