package ports

// Metrics receives registry activity. Implementations must be safe for
// concurrent use; the registry reports under its own locks.
type Metrics interface {
	// CapabilitiesDefined reports the current number of defined capabilities.
	CapabilitiesDefined(total int)

	// RegistrationRecorded reports one registration outcome. outcome is
	// "accepted" or a rejection reason code.
	RegistrationRecorded(capability, outcome string)

	// LookupRecorded reports one capability query.
	LookupRecorded()

	// ActiveImplementations reports the current number of live records.
	ActiveImplementations(total int)

	// CompositionRecorded reports one composition and whether it hit the
	// cache.
	CompositionRecorded(cacheHit bool)

	// OrphansSwept reports how many records one cleanup pass removed.
	OrphansSwept(count int)
}

// NopMetrics discards everything. It is the registry default.
type NopMetrics struct{}

func (NopMetrics) CapabilitiesDefined(int)          {}
func (NopMetrics) RegistrationRecorded(_, _ string) {}
func (NopMetrics) LookupRecorded()                  {}
func (NopMetrics) ActiveImplementations(int)        {}
func (NopMetrics) CompositionRecorded(bool)         {}
func (NopMetrics) OrphansSwept(int)                 {}

var _ Metrics = NopMetrics{}
