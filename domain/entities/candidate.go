package entities

import (
	"fmt"
	"reflect"
)

// TypeOf normalizes a registration candidate to its reflect.Type: a
// reflect.Type passes through, any other value contributes its dynamic type.
// Pointer candidates are kept as pointers so method sets stay intact.
func TypeOf(candidate any) (reflect.Type, error) {
	if candidate == nil {
		return nil, fmt.Errorf("candidate must not be nil")
	}
	if t, ok := candidate.(reflect.Type); ok {
		if t == nil {
			return nil, fmt.Errorf("candidate must not be nil")
		}
		return t, nil
	}
	return reflect.TypeOf(candidate), nil
}

// TypeName renders a diagnostic name for a type: "pkgpath.Name" for defined
// types, the type's string form otherwise. Pointers are unwrapped.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
