package application

import (
	"context"

	"github.com/openshelf/library-registry/registry"
)

// Settlement moves withdrawn funds out of the registry to the recipient.
//
// Transfer runs strictly after the balance has been debited, so a
// re-entrant withdrawal triggered from inside a Transfer implementation
// observes a zero balance and fails with ErrNothingToWithdraw. A non-nil
// error from Transfer causes the debited amount to be re-credited.
type Settlement interface {
	Transfer(ctx context.Context, recipient registry.Identity, amount registry.Amount) error
}
