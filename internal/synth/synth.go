// Package synth tracks the contract member sets of factory-synthesized types
// so the structural validator can recognize them without reflecting over
// factory internals. Synthesized types satisfy their members by construction.
package synth

import (
	"reflect"
	"sync"
)

var records sync.Map // reflect.Type -> map[string]struct{}

// Record associates a synthesized type with its contract member names,
// schema fields and declared behaviors alike.
func Record(t reflect.Type, members []string) {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	records.Store(t, set)
}

// IsSynthesized reports whether the type was produced by the model factory.
func IsSynthesized(t reflect.Type) bool {
	_, ok := records.Load(t)
	return ok
}

// MembersOf returns a copy of the recorded member set of a synthesized type.
func MembersOf(t reflect.Type) (map[string]struct{}, bool) {
	v, ok := records.Load(t)
	if !ok {
		return nil, false
	}
	stored := v.(map[string]struct{})
	set := make(map[string]struct{}, len(stored))
	for m := range stored {
		set[m] = struct{}{}
	}
	return set, true
}
