// Package registrystore defines the contract of the registry's data store:
// the Store interface every engine implements, the typed error taxonomy, and
// the dependency-free observability interfaces engines accept.
//
// The store is the sole keeper of durable state. Every mutating entry point
// independently re-validates the caller and the operational switch instead of
// trusting the application layer, so a bug in a caller's own checks cannot
// bypass a guard (defense in depth).
//
// Engines live in the sub-packages postgresengine (primary) and memoryengine.
package registrystore
