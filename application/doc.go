// Package application implements the business rules of the library registry
// on top of the registrystore.Store contract: librarian membership, the book
// checkout/checkin/trade state machine, and the escrow/withdrawal settlement
// path.
//
// The application never mutates state directly. Every operation validates the
// caller's role, re-reads its preconditions, decides via a pure helper, and
// then performs the store mutations under its own component identity. The
// store independently re-validates that identity against its authorized-caller
// set, so a bug here cannot bypass the storage gate.
//
// Concurrency conflicts reported by the store are retried with exponential
// backoff; every other failure aborts the call unchanged.
package application
