// Package registry contains the domain types of the library registry:
// identities, monetary amounts, book records with their transfer history,
// and the lifecycle notifications emitted when registry state changes.
//
// Notifications represent meaningful business occurrences like BookCheckedOut
// and BookSold rather than generic create/update operations. All of them
// implement the Notification interface with NotificationType() and
// HasOccurredAt() methods so observers can route and correlate them.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package registry
