package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

func Test_DecideCheckOut(t *testing.T) {
	assert.NoError(t, decideCheckOut(registry.Book{CheckedOut: false}))
	assert.ErrorIs(t, decideCheckOut(registry.Book{CheckedOut: true}), registrystore.ErrConflict)
}

func Test_DecideCheckIn(t *testing.T) {
	assert.NoError(t, decideCheckIn(registry.Book{CheckedOut: true}))
	assert.ErrorIs(t, decideCheckIn(registry.Book{CheckedOut: false}), registrystore.ErrConflict)
}

func Test_DecideSell(t *testing.T) {
	owner := registry.NewIdentity()
	stranger := registry.NewIdentity()

	assert.NoError(t, decideSell(registry.Book{CurrentOwner: owner}, owner))
	assert.ErrorIs(t, decideSell(registry.Book{CurrentOwner: owner}, stranger), registrystore.ErrUnauthorized)
	assert.ErrorIs(t, decideSell(registry.Book{CurrentOwner: owner, CheckedOut: true}, owner), registrystore.ErrConflict)
}

func Test_DecideBuy(t *testing.T) {
	listed := registry.Book{PriceForSale: 100}

	assert.NoError(t, decideBuy(listed, 100))
	assert.ErrorIs(t, decideBuy(registry.Book{}, 100), registrystore.ErrConflict)
	assert.ErrorIs(t, decideBuy(listed, 99), ErrInvalidAmount)
	assert.ErrorIs(t, decideBuy(listed, 101), ErrInvalidAmount)
}

func Test_DecideWithdraw(t *testing.T) {
	assert.NoError(t, decideWithdraw(1))
	assert.ErrorIs(t, decideWithdraw(0), ErrNothingToWithdraw)
}
