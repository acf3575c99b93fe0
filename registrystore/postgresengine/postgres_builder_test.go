package postgresengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/library-registry/registry"
)

func builderOnlyStore(tablePrefix string) *Store {
	return &Store{tablePrefix: tablePrefix, clock: time.Now}
}

func Test_BuildInsertBookQuery_GuardsAgainstDuplicates(t *testing.T) {
	s := builderOnlyStore("")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	sqlQuery, err := s.buildInsertBookQuery(key, `{"CheckedOut":false}`)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `INSERT INTO "books"`)
	assert.Contains(t, sqlQuery, "ON CONFLICT DO NOTHING")
	assert.Contains(t, sqlQuery, "::jsonb")
	assert.Contains(t, sqlQuery, string(key))
}

func Test_BuildDeleteBookQuery_RechecksTheCheckedOutGuard(t *testing.T) {
	s := builderOnlyStore("")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	sqlQuery, err := s.buildDeleteBookQuery(key)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `DELETE FROM "books"`)
	assert.Contains(t, sqlQuery, `payload @> '{"CheckedOut": false}'`)
}

func Test_BuildRecordTransferQuery_CombinesUpdateAndInsertInOneCTE(t *testing.T) {
	s := builderOnlyStore("")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	sqlQuery, err := s.buildRecordTransferQuery(key, `{"CheckedOut":true}`, `{"From":"librarian"}`)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, "WITH updated AS")
	assert.Contains(t, sqlQuery, `UPDATE "books"`)
	assert.Contains(t, sqlQuery, `RETURNING "book_key"`)
	assert.Contains(t, sqlQuery, `INSERT INTO "book_transfers"`)
	assert.Contains(t, sqlQuery, "payload || ")
}

func Test_BuildDebitQuery_RechecksSufficiency(t *testing.T) {
	s := builderOnlyStore("")

	sqlQuery, err := s.buildDebitQuery("reader", 50)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `UPDATE "balances"`)
	assert.Contains(t, sqlQuery, "amount - 50")
	assert.Contains(t, sqlQuery, ">= 50")
}

func Test_BuildCreditQuery_UpsertsTheBalance(t *testing.T) {
	s := builderOnlyStore("")

	sqlQuery, err := s.buildCreditQuery("reader", 50)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `INSERT INTO "balances"`)
	assert.Contains(t, sqlQuery, "ON CONFLICT (identity) DO UPDATE")
	assert.Contains(t, sqlQuery, "EXCLUDED.amount")
}

func Test_BuildSetOperatingStatusQuery_UpsertsTheSingletonRow(t *testing.T) {
	s := builderOnlyStore("")

	sqlQuery, err := s.buildSetOperatingStatusQuery(false)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `INSERT INTO "registry_status"`)
	assert.Contains(t, sqlQuery, "ON CONFLICT (id) DO UPDATE")
	assert.Contains(t, sqlQuery, "EXCLUDED.operational")
}

func Test_QueryBuilders_ApplyTheTablePrefix(t *testing.T) {
	s := builderOnlyStore("test_")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	insertQuery, err := s.buildInsertBookQuery(key, "{}")
	require.NoError(t, err)
	assert.Contains(t, insertQuery, `"test_books"`)

	transferQuery, err := s.buildGetTransferQuery(key, 0)
	require.NoError(t, err)
	assert.Contains(t, transferQuery, `"test_book_transfers"`)

	balanceQuery, err := s.buildBalanceQuery("reader")
	require.NoError(t, err)
	assert.Contains(t, balanceQuery, `"test_balances"`)
}

func Test_BuildGetTransfersQuery_OrdersChronologicallyWithoutPaging(t *testing.T) {
	s := builderOnlyStore("")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	sqlQuery, err := s.buildGetTransfersQuery(key)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `FROM "book_transfers"`)
	assert.Contains(t, sqlQuery, `ORDER BY "id" ASC`)
	assert.NotContains(t, sqlQuery, "LIMIT")
}

func Test_BuildGetTransferQuery_PagesByChronologicalIndex(t *testing.T) {
	s := builderOnlyStore("")
	key := registry.NewBookKey("Solaris", "Lem", 1961)

	sqlQuery, err := s.buildGetTransferQuery(key, 3)
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `ORDER BY "id" ASC`)
	assert.Contains(t, sqlQuery, "LIMIT 1")
	assert.Contains(t, sqlQuery, "OFFSET 3")
}
