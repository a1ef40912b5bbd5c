// Package ports defines the interfaces between the registry and the
// validation, resolution and composition policies behind it. Application
// adapters implement these; the registry depends only on the contracts, so
// tests and deployments can substitute policies freely.
package ports
