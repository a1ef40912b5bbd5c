// Package entities provides the core domain types of the capability engine:
// capability definitions and their members, composition name sets,
// implementation records and registry statistics. These are plain values with
// no behavior beyond construction, derivation and read-only views; policy
// lives in the application packages.
package entities
