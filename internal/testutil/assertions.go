// Package testutil provides shared assertions for traitkit tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
)

// AssertJSONEqual compares two JSON documents for equality, ignoring
// formatting.
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...any) {
	t.Helper()

	var expectedDoc, actualDoc any
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedDoc), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualDoc), "actual JSON is invalid")

	assert.Equal(t, expectedDoc, actualDoc, msgAndArgs...)
}

// RequireRejection asserts that err is a registration rejection with the
// given reason and returns the structured form for further inspection.
func RequireRejection(t *testing.T, err error, reason errors.Reason) errors.Rejection {
	t.Helper()

	require.Error(t, err)
	rej, ok := errors.ToRejection(err)
	require.True(t, ok, "error %v is not a registration rejection", err)
	require.Equal(t, reason, rej.Reason)
	return rej
}

// Template derives a template with the given options, failing the test on a
// contract violation.
func Template(t *testing.T, base *fields.FieldTemplate, opts ...fields.TemplateOption) *fields.FieldTemplate {
	t.Helper()

	tpl, err := base.With(opts...)
	require.NoError(t, err)
	return tpl
}
