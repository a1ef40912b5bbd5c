package entities

// Stats is a point-in-time snapshot of registry activity.
type Stats struct {
	// Registrations counts successful register calls, idempotent repeats
	// included.
	Registrations int64 `json:"registrations"`

	// Lookups counts capability queries.
	Lookups int64 `json:"lookups"`

	// ActiveImplementations counts live (capability, type) records.
	ActiveImplementations int64 `json:"active_implementations"`

	// TotalCapabilities counts defined capabilities.
	TotalCapabilities int64 `json:"total_capabilities"`
}
