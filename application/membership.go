package application

import (
	"context"

	"github.com/openshelf/library-registry/registry"
)

// SetMembership grants or revokes librarian rights. Owner-only.
//
// Idempotent: adding an existing librarian or removing a non-librarian is a
// no-op that still emits the MembershipChanged notification (via the store)
// with the resulting state.
func (a *Application) SetMembership(ctx context.Context, caller registry.Identity, identity registry.Identity, add bool) error {
	if err := a.requireOwner(caller); err != nil {
		return err
	}

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		return a.store.SetLibrarian(retryCtx, a.self, identity, add)
	})
	if err != nil {
		return err
	}

	a.logOperation(operationSetMembership, logAttrIdentity, identity, "active", add)

	return nil
}
