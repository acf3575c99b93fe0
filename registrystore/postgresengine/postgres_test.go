package postgresengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
	"github.com/openshelf/library-registry/registrystore/postgresengine"
	"github.com/openshelf/library-registry/testutil/doubles"
	"github.com/openshelf/library-registry/testutil/storewrapper"
)

const (
	storeOwner = registry.Identity("store-owner")
	appCaller  = registry.Identity("application-component")
	librarian  = registry.Identity("librarian")
	reader     = registry.Identity("reader")
)

func setup(t *testing.T, options ...postgresengine.Option) (context.Context, *postgresengine.Store, storewrapper.Wrapper) {
	t.Helper()
	ctx := context.Background()

	wrapper := storewrapper.CreateWrapperWithTestConfig(t, storeOwner, options...)
	t.Cleanup(func() {
		storewrapper.CleanUp(t, wrapper)
		wrapper.Close()
	})

	store := wrapper.GetStore()
	require.NoError(t, store.AuthorizeCaller(ctx, storeOwner, appCaller))

	return ctx, store, wrapper
}

func insertTestBook(t *testing.T, ctx context.Context, store *postgresengine.Store) registry.BookKey {
	t.Helper()

	key := registry.NewBookKey("Solaris", "Lem", 1961)
	require.NoError(t, store.InsertBook(ctx, appCaller, key, librarian))

	return key
}

func Test_Operational_DefaultsToTrueAfterSchemaProvisioning(t *testing.T) {
	ctx, store, _ := setup(t)

	operational, err := store.Operational(ctx)

	require.NoError(t, err)
	assert.True(t, operational)
}

func Test_SetOperatingStatus_When_CallerIsNotTheOwner(t *testing.T) {
	ctx, store, _ := setup(t)

	err := store.SetOperatingStatus(ctx, appCaller, false)

	assert.ErrorIs(t, err, registrystore.ErrUnauthorized)
}

func Test_SetOperatingStatus_OpensAndClosesTheBreaker(t *testing.T) {
	ctx, store, _ := setup(t)

	require.NoError(t, store.SetOperatingStatus(ctx, storeOwner, false))

	operational, err := store.Operational(ctx)
	require.NoError(t, err)
	assert.False(t, operational)

	err = store.SetLibrarian(ctx, appCaller, librarian, true)
	assert.ErrorIs(t, err, registrystore.ErrNotOperational)

	require.NoError(t, store.SetOperatingStatus(ctx, storeOwner, true))
	assert.NoError(t, store.SetLibrarian(ctx, appCaller, librarian, true))
}

func Test_Mutations_When_CallerIsNotAuthorized(t *testing.T) {
	ctx, store, _ := setup(t)
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	assert.ErrorIs(t, store.SetLibrarian(ctx, reader, librarian, true), registrystore.ErrUnauthorized)
	assert.ErrorIs(t, store.InsertBook(ctx, reader, key, librarian), registrystore.ErrUnauthorized)
	assert.ErrorIs(t, store.RecordTransfer(ctx, reader, key, reader, false, librarian, ""), registrystore.ErrUnauthorized)
	assert.ErrorIs(t, store.Credit(ctx, reader, reader, 10), registrystore.ErrUnauthorized)
}

func Test_DeauthorizeCaller_RevokesAccess(t *testing.T) {
	ctx, store, _ := setup(t)

	require.NoError(t, store.DeauthorizeCaller(ctx, storeOwner, appCaller))

	err := store.SetLibrarian(ctx, appCaller, librarian, true)
	assert.ErrorIs(t, err, registrystore.ErrUnauthorized)
}

func Test_SetLibrarian_AddsAndRemovesMembership(t *testing.T) {
	ctx, store, _ := setup(t)

	require.NoError(t, store.SetLibrarian(ctx, appCaller, librarian, true))

	isLibrarian, err := store.IsLibrarian(ctx, librarian)
	require.NoError(t, err)
	assert.True(t, isLibrarian)

	require.NoError(t, store.SetLibrarian(ctx, appCaller, librarian, false))

	isLibrarian, err = store.IsLibrarian(ctx, librarian)
	require.NoError(t, err)
	assert.False(t, isLibrarian)
}

func Test_InsertBook_RoundTripsThePayload(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)

	isBook, err := store.IsBook(ctx, key)
	require.NoError(t, err)
	assert.True(t, isBook)

	book, err := store.GetBook(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, book.Key)
	assert.Equal(t, librarian, book.OriginLibrarian)
	assert.Equal(t, librarian, book.CurrentOwner)
	assert.False(t, book.CheckedOut)
	assert.Zero(t, book.PriceForSale)
	assert.Zero(t, book.TransferCount)
}

func Test_InsertBook_When_TheKeyAlreadyExists(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)

	err := store.InsertBook(ctx, appCaller, key, librarian)

	assert.ErrorIs(t, err, registrystore.ErrAlreadyExists)
}

func Test_RecordTransfer_UpdatesTheBookAndAppendsToTheLedger(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)

	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, true, librarian, "lent out"))
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, librarian, false, reader, "returned"))

	book, err := store.GetBook(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, librarian, book.CurrentOwner)
	assert.False(t, book.CheckedOut)
	assert.Equal(t, 2, book.TransferCount)

	first, err := store.GetTransfer(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, librarian, first.From)
	assert.Equal(t, registry.NotesString("lent out"), first.Notes)

	second, err := store.GetTransfer(ctx, key, 1)
	require.NoError(t, err)
	assert.Equal(t, reader, second.From)
	assert.Equal(t, registry.NotesString("returned"), second.Notes)
}

func Test_RecordTransfer_When_TheBookDoesNotExist(t *testing.T) {
	ctx, store, _ := setup(t)

	err := store.RecordTransfer(ctx, appCaller, registry.NewBookKey("missing", "nobody", 1900), reader, false, librarian, "")

	assert.ErrorIs(t, err, registrystore.ErrNotFound)
}

func Test_GetTransfer_When_TheIndexIsOutOfRange(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, false, librarian, ""))

	_, err := store.GetTransfer(ctx, key, 1)
	assert.ErrorIs(t, err, registrystore.ErrTransferNotFound)

	_, err = store.GetTransfer(ctx, key, -1)
	assert.ErrorIs(t, err, registrystore.ErrTransferNotFound)
}

func Test_GetTransfers_ReturnsTheWholeHistoryInOrder(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, true, librarian, "lent out"))
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, librarian, false, reader, "returned"))

	transfers, err := store.GetTransfers(ctx, key)
	require.NoError(t, err)

	require.Len(t, transfers, 2)
	assert.Equal(t, librarian, transfers[0].From)
	assert.Equal(t, registry.NotesString("lent out"), transfers[0].Notes)
	assert.Equal(t, reader, transfers[1].From)
	assert.Equal(t, registry.NotesString("returned"), transfers[1].Notes)
}

func Test_GetTransfers_When_TheBookHasNoHistory(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)

	transfers, err := store.GetTransfers(ctx, key)

	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func Test_GetTransfers_When_TheBookDoesNotExist(t *testing.T) {
	ctx, store, _ := setup(t)

	_, err := store.GetTransfers(ctx, registry.NewBookKey("missing", "nobody", 1900))

	assert.ErrorIs(t, err, registrystore.ErrNotFound)
}

func Test_GetTransfer_When_TheBookDoesNotExist(t *testing.T) {
	ctx, store, _ := setup(t)

	_, err := store.GetTransfer(ctx, registry.NewBookKey("missing", "nobody", 1900), 0)

	assert.ErrorIs(t, err, registrystore.ErrNotFound)
}

func Test_DeleteBook_When_TheBookIsCheckedOut(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, true, librarian, ""))

	err := store.DeleteBook(ctx, appCaller, key)

	assert.ErrorIs(t, err, registrystore.ErrConflict)
}

func Test_DeleteBook_CascadesToTheTransferLedger(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, false, librarian, ""))

	require.NoError(t, store.DeleteBook(ctx, appCaller, key))

	_, err := store.GetBook(ctx, key)
	assert.ErrorIs(t, err, registrystore.ErrNotFound)

	// Re-inserting the same key starts with an empty ledger, so the cascade
	// must have removed the old entries.
	require.NoError(t, store.InsertBook(ctx, appCaller, key, librarian))

	book, err := store.GetBook(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, book.TransferCount)
}

func Test_SetPrice_PatchesOnlyThePriceField(t *testing.T) {
	ctx, store, _ := setup(t)
	key := insertTestBook(t, ctx, store)
	require.NoError(t, store.RecordTransfer(ctx, appCaller, key, reader, false, librarian, ""))

	require.NoError(t, store.SetPrice(ctx, appCaller, key, 250))

	book, err := store.GetBook(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, registry.Amount(250), book.PriceForSale)
	assert.Equal(t, reader, book.CurrentOwner)

	require.NoError(t, store.SetPrice(ctx, appCaller, key, 0))

	book, err = store.GetBook(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, book.PriceForSale)
}

func Test_SetPrice_When_TheBookDoesNotExist(t *testing.T) {
	ctx, store, _ := setup(t)

	err := store.SetPrice(ctx, appCaller, registry.NewBookKey("missing", "nobody", 1900), 10)

	assert.ErrorIs(t, err, registrystore.ErrNotFound)
}

func Test_CreditAndDebit_TrackTheBalance(t *testing.T) {
	ctx, store, _ := setup(t)

	require.NoError(t, store.Credit(ctx, appCaller, reader, 70))
	require.NoError(t, store.Credit(ctx, appCaller, reader, 30))
	require.NoError(t, store.Debit(ctx, appCaller, reader, 60))

	balance, err := store.Balance(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, registry.Amount(40), balance)
}

func Test_Debit_When_TheBalanceIsInsufficient(t *testing.T) {
	ctx, store, _ := setup(t)
	require.NoError(t, store.Credit(ctx, appCaller, reader, 50))

	err := store.Debit(ctx, appCaller, reader, 51)

	assert.ErrorIs(t, err, registrystore.ErrInsufficientBalance)
}

func Test_Balance_For_AnUnknownAccount(t *testing.T) {
	ctx, store, _ := setup(t)

	balance, err := store.Balance(ctx, reader)

	require.NoError(t, err)
	assert.Zero(t, balance)
}

func Test_Store_EmitsMembershipAndStatusNotifications(t *testing.T) {
	recorder := doubles.NewNotificationRecorder()
	ctx, store, _ := setup(t, postgresengine.WithNotifier(recorder))

	require.NoError(t, store.SetLibrarian(ctx, appCaller, librarian, true))
	require.NoError(t, store.SetOperatingStatus(ctx, storeOwner, false))

	membership := recorder.OfType(registry.MembershipChangedNotificationType)
	require.Len(t, membership, 1)
	assert.True(t, membership[0].(registry.MembershipChanged).Active)

	status := recorder.OfType(registry.OperatingStatusChangedNotificationType)
	require.Len(t, status, 1)
	assert.False(t, status[0].(registry.OperatingStatusChanged).Operational)
}
