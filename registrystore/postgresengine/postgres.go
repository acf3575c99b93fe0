package postgresengine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
	"github.com/openshelf/library-registry/registrystore/postgresengine/internal/adapters"
)

const (
	tableBooks         = "books"
	tableBookTransfers = "book_transfers"
	tableBalances      = "balances"
	tableLibrarians    = "librarians"
	tableAuthorized    = "authorized_callers"
	tableStatus        = "registry_status"

	colBookKey     = "book_key"
	colPayload     = "payload"
	colRecordedAt  = "recorded_at"
	colIdentity    = "identity"
	colAmount      = "amount"
	colID          = "id"
	colOperational = "operational"

	fieldCheckedOut = "CheckedOut"

	singletonStatusRowID = 1

	operationSetOperatingStatus = "set_operating_status"
	operationAuthorizeCaller    = "authorize_caller"
	operationDeauthorizeCaller  = "deauthorize_caller"
	operationSetLibrarian       = "set_librarian"
	operationInsertBook         = "insert_book"
	operationDeleteBook         = "delete_book"
	operationRecordTransfer     = "record_transfer"
	operationSetPrice           = "set_price"
	operationCredit             = "credit"
	operationDebit              = "debit"
	operationRead               = "read"

	logMsgSQLExecuted     = "executed sql for: "
	logMsgOperation       = "registrystore operation: "
	logMsgOperationFailed = "registrystore operation failed"
	logSuffixCompleted    = " completed"
	logSuffixRejected     = " rejected"
	logAttrError          = "error"
	logAttrErrorType      = "error_type"
	logAttrQuery          = "query"
	logAttrOperation      = "operation"
	logAttrDurationMS     = "duration_ms"
	logAttrBookKey        = "book_key"
	logAttrIdentity       = "identity"
	logAttrAmount         = "amount"
	logAttrActive         = "active"
	logAttrOperational    = "operational"

	metricOperationDuration    = "registrystore_operation_duration_seconds"
	metricDatabaseErrors       = "registrystore_database_errors_total"
	metricConcurrencyConflicts = "registrystore_concurrency_conflicts_total"

	spanNamePrefix    = "registrystore."
	spanAttrOperation = "operation"
	spanAttrErrorType = "error_type"
	labelStatus       = "status"
	labelConflictType = "conflict_type"
	statusSuccess     = "success"
	statusError       = "error"

	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeUnauthorized        = "unauthorized"
	errorTypeNotOperational      = "not_operational"
	errorTypeNotFound            = "not_found"
	errorTypeAlreadyExists       = "already_exists"
	errorTypeConflict            = "conflict"
	errorTypeInsufficientBalance = "insufficient_balance"
	errorTypeDatabase            = "database"

	cteUpdated      = "updated"
	dialectPostgres = "postgres"
	castJsonb       = "?::jsonb"
	castTimestamp   = "?::timestamp with time zone"
)

type sqlQueryString = string

// jsonUnmarshal is the tuned decoder for stored jsonb payloads; marshaling
// uses the standard library since write paths are not decode-bound.
var jsonUnmarshal = jsoniter.ConfigFastest

// bookPayload is the jsonb document stored per book record.
type bookPayload struct {
	OriginLibrarian registry.Identity
	CurrentOwner    registry.Identity
	CheckedOut      bool
	PriceForSale    registry.Amount
}

// transferPayload is the jsonb document stored per transfer ledger entry.
type transferPayload struct {
	From  registry.Identity
	Notes registry.NotesString
}

// Store is the PostgreSQL implementation of registrystore.Store.
//
// Every mutation is a single guarded SQL statement whose rows-affected count
// is validated, so a precondition that held at read time but not at write
// time surfaces as registrystore.ErrConcurrencyConflict.
type Store struct {
	db               adapters.DBAdapter
	owner            registry.Identity
	tablePrefix      string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	notifier         registry.Notifier
	clock            func() time.Time
}

var _ registrystore.Store = (*Store)(nil)

func newStore(db adapters.DBAdapter, owner registry.Identity, options ...Option) (*Store, error) {
	if owner == "" {
		return nil, registrystore.ErrEmptyOwner
	}

	s := &Store{
		db:    db,
		owner: owner,
		clock: time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewStoreFromPGXPool creates a new Store using a pgx pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, owner registry.Identity, options ...Option) (*Store, error) {
	if db == nil {
		return nil, registrystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), owner, options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a pgx pool for
// writes and a replica pool for reads, with optional configuration.
func NewStoreFromPGXPoolAndReplica(
	db *pgxpool.Pool,
	replica *pgxpool.Pool,
	owner registry.Identity,
	options ...Option,
) (*Store, error) {
	if db == nil || replica == nil {
		return nil, registrystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), owner, options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, owner registry.Identity, options ...Option) (*Store, error) {
	if db == nil {
		return nil, registrystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), owner, options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, owner registry.Identity, options ...Option) (*Store, error) {
	if db == nil {
		return nil, registrystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), owner, options...)
}

/*** Mutations ***/

// SetOperatingStatus toggles the operational circuit breaker.
// Owner-only and exempt from the operational check itself.
func (s *Store) SetOperatingStatus(ctx context.Context, caller registry.Identity, operational bool) error {
	observer, ctx := s.observeOperation(ctx, operationSetOperatingStatus)

	if err := s.requireOwner(caller); err != nil {
		return observer.fail(err)
	}

	sqlQuery, buildErr := s.buildSetOperatingStatusQuery(operational)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	if _, err := s.execStatement(ctx, sqlQuery, operationSetOperatingStatus); err != nil {
		return observer.fail(err)
	}

	s.emit(ctx, registry.BuildOperatingStatusChanged(operational, s.clock()))
	observer.succeed(logAttrOperational, operational)

	return nil
}

// AuthorizeCaller adds an identity to the authorized-caller set. Owner-only, idempotent.
func (s *Store) AuthorizeCaller(ctx context.Context, caller registry.Identity, authorized registry.Identity) error {
	observer, ctx := s.observeOperation(ctx, operationAuthorizeCaller)

	if err := s.requireOwner(caller); err != nil {
		return observer.fail(err)
	}

	sqlQuery, buildErr := s.buildIdentityInsertQuery(s.tableName(tableAuthorized), authorized)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	if _, err := s.execStatement(ctx, sqlQuery, operationAuthorizeCaller); err != nil {
		return observer.fail(err)
	}

	observer.succeed(logAttrIdentity, authorized)

	return nil
}

// DeauthorizeCaller removes an identity from the authorized-caller set. Owner-only, idempotent.
func (s *Store) DeauthorizeCaller(ctx context.Context, caller registry.Identity, authorized registry.Identity) error {
	observer, ctx := s.observeOperation(ctx, operationDeauthorizeCaller)

	if err := s.requireOwner(caller); err != nil {
		return observer.fail(err)
	}

	sqlQuery, buildErr := s.buildIdentityDeleteQuery(s.tableName(tableAuthorized), authorized)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	if _, err := s.execStatement(ctx, sqlQuery, operationDeauthorizeCaller); err != nil {
		return observer.fail(err)
	}

	observer.succeed(logAttrIdentity, authorized)

	return nil
}

// SetLibrarian adds or removes an identity from the librarian set.
// Idempotent either way; the emitted notification carries the resulting state.
func (s *Store) SetLibrarian(ctx context.Context, caller registry.Identity, librarian registry.Identity, active bool) error {
	observer, ctx := s.observeOperation(ctx, operationSetLibrarian)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	var sqlQuery sqlQueryString
	var buildErr error

	if active {
		sqlQuery, buildErr = s.buildIdentityInsertQuery(s.tableName(tableLibrarians), librarian)
	} else {
		sqlQuery, buildErr = s.buildIdentityDeleteQuery(s.tableName(tableLibrarians), librarian)
	}

	if buildErr != nil {
		return observer.fail(buildErr)
	}

	if _, err := s.execStatement(ctx, sqlQuery, operationSetLibrarian); err != nil {
		return observer.fail(err)
	}

	s.emit(ctx, registry.BuildMembershipChanged(librarian, active, s.clock()))
	observer.succeed(logAttrIdentity, librarian, logAttrActive, active)

	return nil
}

// InsertBook creates a fresh book record owned by its origin librarian.
func (s *Store) InsertBook(
	ctx context.Context,
	caller registry.Identity,
	key registry.BookKey,
	originLibrarian registry.Identity,
) error {
	observer, ctx := s.observeOperation(ctx, operationInsertBook)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	payloadJSON, marshalErr := marshalPayload(bookPayload{
		OriginLibrarian: originLibrarian,
		CurrentOwner:    originLibrarian,
		CheckedOut:      false,
		PriceForSale:    0,
	})
	if marshalErr != nil {
		return observer.fail(marshalErr)
	}

	sqlQuery, buildErr := s.buildInsertBookQuery(key, payloadJSON)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	rowsAffected, execErr := s.execStatement(ctx, sqlQuery, operationInsertBook)
	if execErr != nil {
		return observer.fail(execErr)
	}

	if rowsAffected == 0 {
		return observer.fail(registrystore.ErrAlreadyExists)
	}

	observer.succeed(logAttrBookKey, key)

	return nil
}

// DeleteBook removes a book record and its whole transfer history.
// The delete statement re-checks the checked-out guard, so a checkout racing
// the precondition read surfaces as ErrConcurrencyConflict instead of
// silently dropping an open loan.
func (s *Store) DeleteBook(ctx context.Context, caller registry.Identity, key registry.BookKey) error {
	observer, ctx := s.observeOperation(ctx, operationDeleteBook)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	book, readErr := s.readBookPayload(ctx, key)
	if readErr != nil {
		return observer.fail(readErr)
	}

	if book.CheckedOut {
		return observer.fail(registrystore.ErrConflict)
	}

	sqlQuery, buildErr := s.buildDeleteBookQuery(key)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	rowsAffected, execErr := s.execStatement(ctx, sqlQuery, operationDeleteBook)
	if execErr != nil {
		return observer.fail(execErr)
	}

	if rowsAffected == 0 {
		return observer.fail(registrystore.ErrConcurrencyConflict)
	}

	observer.succeed(logAttrBookKey, key)

	return nil
}

// RecordTransfer appends a ledger entry and updates current owner and
// checked-out flag in one atomic statement (update and insert share a CTE).
func (s *Store) RecordTransfer(
	ctx context.Context,
	caller registry.Identity,
	key registry.BookKey,
	newOwner registry.Identity,
	checkedOut bool,
	from registry.Identity,
	notes registry.NotesString,
) error {
	observer, ctx := s.observeOperation(ctx, operationRecordTransfer)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	patchJSON, marshalErr := marshalPayload(map[string]any{
		"CurrentOwner": newOwner,
		"CheckedOut":   checkedOut,
	})
	if marshalErr != nil {
		return observer.fail(marshalErr)
	}

	transferJSON, marshalErr := marshalPayload(transferPayload{From: from, Notes: notes})
	if marshalErr != nil {
		return observer.fail(marshalErr)
	}

	sqlQuery, buildErr := s.buildRecordTransferQuery(key, patchJSON, transferJSON)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	rowsAffected, execErr := s.execStatement(ctx, sqlQuery, operationRecordTransfer)
	if execErr != nil {
		return observer.fail(execErr)
	}

	if rowsAffected == 0 {
		return observer.fail(registrystore.ErrNotFound)
	}

	observer.succeed(logAttrBookKey, key)

	return nil
}

// SetPrice sets the sale price of a book; zero delists it.
func (s *Store) SetPrice(ctx context.Context, caller registry.Identity, key registry.BookKey, price registry.Amount) error {
	observer, ctx := s.observeOperation(ctx, operationSetPrice)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	patchJSON, marshalErr := marshalPayload(map[string]any{"PriceForSale": price})
	if marshalErr != nil {
		return observer.fail(marshalErr)
	}

	sqlQuery, buildErr := s.buildPayloadPatchQuery(key, patchJSON)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	rowsAffected, execErr := s.execStatement(ctx, sqlQuery, operationSetPrice)
	if execErr != nil {
		return observer.fail(execErr)
	}

	if rowsAffected == 0 {
		return observer.fail(registrystore.ErrNotFound)
	}

	observer.succeed(logAttrBookKey, key, logAttrAmount, price)

	return nil
}

// Credit increases an account's withdrawable balance. Zero amounts are a no-op.
func (s *Store) Credit(ctx context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error {
	observer, ctx := s.observeOperation(ctx, operationCredit)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	if amount == 0 {
		observer.succeed(logAttrIdentity, account, logAttrAmount, amount)
		return nil
	}

	sqlQuery, buildErr := s.buildCreditQuery(account, amount)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	if _, err := s.execStatement(ctx, sqlQuery, operationCredit); err != nil {
		return observer.fail(err)
	}

	observer.succeed(logAttrIdentity, account, logAttrAmount, amount)

	return nil
}

// Debit decreases an account's withdrawable balance.
// The update statement re-checks sufficiency, so a concurrent debit between
// the balance read and the write surfaces as ErrConcurrencyConflict rather
// than driving the balance negative.
func (s *Store) Debit(ctx context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error {
	observer, ctx := s.observeOperation(ctx, operationDebit)

	if err := s.requireGate(ctx, caller); err != nil {
		return observer.fail(err)
	}

	if amount == 0 {
		observer.succeed(logAttrIdentity, account, logAttrAmount, amount)
		return nil
	}

	balance, readErr := s.Balance(ctx, account)
	if readErr != nil {
		return observer.fail(readErr)
	}

	if balance < amount {
		return observer.fail(registrystore.ErrInsufficientBalance)
	}

	sqlQuery, buildErr := s.buildDebitQuery(account, amount)
	if buildErr != nil {
		return observer.fail(buildErr)
	}

	rowsAffected, execErr := s.execStatement(ctx, sqlQuery, operationDebit)
	if execErr != nil {
		return observer.fail(execErr)
	}

	if rowsAffected == 0 {
		return observer.fail(registrystore.ErrConcurrencyConflict)
	}

	observer.succeed(logAttrIdentity, account, logAttrAmount, amount)

	return nil
}

/*** Reads ***/

// Operational reports the state of the circuit breaker.
// A missing status row counts as operational, matching the seeded default.
func (s *Store) Operational(ctx context.Context) (bool, error) {
	sqlQuery, buildErr := s.buildOperationalQuery()
	if buildErr != nil {
		return false, buildErr
	}

	var operational bool
	if err := s.queryRowScan(ctx, sqlQuery, &operational); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return true, nil
		}

		return false, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	return operational, nil
}

// IsAuthorizedCaller reports membership in the authorized-caller set.
func (s *Store) IsAuthorizedCaller(ctx context.Context, identity registry.Identity) (bool, error) {
	return s.identityExists(ctx, s.tableName(tableAuthorized), identity)
}

// IsLibrarian reports membership in the librarian set.
func (s *Store) IsLibrarian(ctx context.Context, identity registry.Identity) (bool, error) {
	return s.identityExists(ctx, s.tableName(tableLibrarians), identity)
}

// IsBook reports whether a record exists for the key.
func (s *Store) IsBook(ctx context.Context, key registry.BookKey) (bool, error) {
	sqlQuery, buildErr := s.buildBookExistsQuery(key)
	if buildErr != nil {
		return false, buildErr
	}

	var one int
	if err := s.queryRowScan(ctx, sqlQuery, &one); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return false, nil
		}

		return false, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	return true, nil
}

// GetBook returns the book record including its transfer count.
func (s *Store) GetBook(ctx context.Context, key registry.BookKey) (registry.Book, error) {
	sqlQuery, buildErr := s.buildGetBookQuery(key)
	if buildErr != nil {
		return registry.Book{}, buildErr
	}

	var payloadJSON []byte
	var transferCount int64

	if err := s.queryRowScan(ctx, sqlQuery, &payloadJSON, &transferCount); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return registry.Book{}, registrystore.ErrNotFound
		}

		return registry.Book{}, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	var payload bookPayload
	if err := jsonUnmarshal.Unmarshal(payloadJSON, &payload); err != nil {
		return registry.Book{}, errors.Join(registrystore.ErrMappingPayloadFailed, err)
	}

	return registry.Book{
		Key:             key,
		OriginLibrarian: payload.OriginLibrarian,
		CurrentOwner:    payload.CurrentOwner,
		CheckedOut:      payload.CheckedOut,
		PriceForSale:    payload.PriceForSale,
		TransferCount:   int(transferCount),
	}, nil
}

// GetTransfer returns one entry of the book's transfer history by its
// zero-based chronological index.
func (s *Store) GetTransfer(ctx context.Context, key registry.BookKey, index int) (registry.Transfer, error) {
	exists, existsErr := s.IsBook(ctx, key)
	if existsErr != nil {
		return registry.Transfer{}, existsErr
	}

	if !exists {
		return registry.Transfer{}, registrystore.ErrNotFound
	}

	if index < 0 {
		return registry.Transfer{}, registrystore.ErrTransferNotFound
	}

	sqlQuery, buildErr := s.buildGetTransferQuery(key, index)
	if buildErr != nil {
		return registry.Transfer{}, buildErr
	}

	var payloadJSON []byte
	if err := s.queryRowScan(ctx, sqlQuery, &payloadJSON); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return registry.Transfer{}, registrystore.ErrTransferNotFound
		}

		return registry.Transfer{}, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	var payload transferPayload
	if err := jsonUnmarshal.Unmarshal(payloadJSON, &payload); err != nil {
		return registry.Transfer{}, errors.Join(registrystore.ErrMappingPayloadFailed, err)
	}

	return registry.Transfer{From: payload.From, Notes: payload.Notes}, nil
}

// GetTransfers returns the book's whole transfer history in chronological
// order; ErrNotFound if the book is absent.
func (s *Store) GetTransfers(ctx context.Context, key registry.BookKey) (registry.Transfers, error) {
	exists, existsErr := s.IsBook(ctx, key)
	if existsErr != nil {
		return nil, existsErr
	}

	if !exists {
		return nil, registrystore.ErrNotFound
	}

	sqlQuery, buildErr := s.buildGetTransfersQuery(key)
	if buildErr != nil {
		return nil, buildErr
	}

	rows, queryErr := s.queryRows(ctx, sqlQuery)
	if queryErr != nil {
		return nil, errors.Join(registrystore.ErrQueryingFailed, queryErr)
	}

	defer func() { _ = rows.Close() }()

	var transfers registry.Transfers

	for rows.Next() {
		var payloadJSON []byte
		if err := rows.Scan(&payloadJSON); err != nil {
			return nil, errors.Join(registrystore.ErrScanningDBRowFailed, err)
		}

		var payload transferPayload
		if err := jsonUnmarshal.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(registrystore.ErrMappingPayloadFailed, err)
		}

		transfers = append(transfers, registry.Transfer{From: payload.From, Notes: payload.Notes})
	}

	return transfers, nil
}

// Balance returns an account's withdrawable balance, zero for unknown accounts.
func (s *Store) Balance(ctx context.Context, account registry.Identity) (registry.Amount, error) {
	sqlQuery, buildErr := s.buildBalanceQuery(account)
	if buildErr != nil {
		return 0, buildErr
	}

	var amount registry.Amount
	if err := s.queryRowScan(ctx, sqlQuery, &amount); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return 0, nil
		}

		return 0, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	return amount, nil
}

/*** Authorization gate ***/

// requireOwner passes only for the owner identity fixed at construction.
func (s *Store) requireOwner(caller registry.Identity) error {
	if caller != s.owner {
		return registrystore.ErrUnauthorized
	}

	return nil
}

// requireGate re-validates caller authorization first and the operational
// switch second, independent of whatever the application already checked.
func (s *Store) requireGate(ctx context.Context, caller registry.Identity) error {
	authorized, err := s.IsAuthorizedCaller(ctx, caller)
	if err != nil {
		return err
	}

	if !authorized {
		return registrystore.ErrUnauthorized
	}

	operational, err := s.Operational(ctx)
	if err != nil {
		return err
	}

	if !operational {
		return registrystore.ErrNotOperational
	}

	return nil
}

/*** Execution helpers ***/

func (s *Store) execStatement(ctx context.Context, sqlQuery string, operation string) (int64, error) {
	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if execErr != nil {
		return 0, errors.Join(registrystore.ErrExecutingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(registrystore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (s *Store) queryRows(ctx context.Context, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, operationRead, time.Since(start))

	return rows, queryErr
}

func (s *Store) queryRowScan(ctx context.Context, sqlQuery string, dest ...any) error {
	start := time.Now()
	scanErr := s.db.QueryRow(ctx, sqlQuery).Scan(dest...)
	s.logQueryWithDuration(ctx, sqlQuery, operationRead, time.Since(start))

	return scanErr
}

func (s *Store) identityExists(ctx context.Context, table string, identity registry.Identity) (bool, error) {
	sqlQuery, buildErr := s.buildIdentityExistsQuery(table, identity)
	if buildErr != nil {
		return false, buildErr
	}

	var one int
	if err := s.queryRowScan(ctx, sqlQuery, &one); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return false, nil
		}

		return false, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	return true, nil
}

func (s *Store) emit(ctx context.Context, notification registry.Notification) {
	if s.notifier != nil {
		s.notifier.Emit(ctx, notification)
	}
}

func (s *Store) tableName(base string) string {
	return s.tablePrefix + base
}

func marshalPayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(registrystore.ErrMappingPayloadFailed, err)
	}

	return string(data), nil
}

/*** Query builders ***/

func (s *Store) buildSetOperatingStatusQuery(operational bool) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName(tableStatus)).
		Rows(goqu.Record{colID: singletonStatusRowID, colOperational: operational}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colOperational: goqu.L(fmt.Sprintf("EXCLUDED.%s", colOperational)),
		}))

	return toSQL(insertStmt)
}

func (s *Store) buildIdentityInsertQuery(table string, identity registry.Identity) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(table).
		Rows(goqu.Record{colIdentity: identity}).
		OnConflict(goqu.DoNothing())

	return toSQL(insertStmt)
}

func (s *Store) buildIdentityDeleteQuery(table string, identity registry.Identity) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(table).
		Where(goqu.Ex{colIdentity: identity})

	return toSQL(deleteStmt)
}

func (s *Store) buildInsertBookQuery(key registry.BookKey, payloadJSON string) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName(tableBooks)).
		Rows(goqu.Record{
			colBookKey: key,
			colPayload: goqu.L(castJsonb, payloadJSON),
		}).
		OnConflict(goqu.DoNothing())

	return toSQL(insertStmt)
}

func (s *Store) buildDeleteBookQuery(key registry.BookKey) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.tableName(tableBooks)).
		Where(
			goqu.Ex{colBookKey: key},
			goqu.L(fmt.Sprintf(`%s @> '{"%s": false}'`, colPayload, fieldCheckedOut)),
		)

	return toSQL(deleteStmt)
}

// buildRecordTransferQuery combines the book update and the ledger insert in
// one data-modifying CTE: the insert only happens when the update matched,
// and both share the statement's atomicity.
func (s *Store) buildRecordTransferQuery(
	key registry.BookKey,
	patchJSON string,
	transferJSON string,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	updateStmt := builder.
		Update(s.tableName(tableBooks)).
		Set(goqu.Record{
			colPayload: goqu.L(fmt.Sprintf("%s || ?::jsonb", colPayload), patchJSON),
		}).
		Where(goqu.Ex{colBookKey: key}).
		Returning(colBookKey)

	insertStmt := builder.
		Insert(s.tableName(tableBookTransfers)).
		Cols(colBookKey, colPayload, colRecordedAt).
		With(cteUpdated, updateStmt).
		FromQuery(
			builder.From(cteUpdated).
				Select(
					goqu.C(colBookKey),
					goqu.L(castJsonb, transferJSON),
					goqu.L(castTimestamp, s.clock().UTC()),
				),
		)

	return toSQL(insertStmt)
}

func (s *Store) buildPayloadPatchQuery(key registry.BookKey, patchJSON string) (sqlQueryString, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tableName(tableBooks)).
		Set(goqu.Record{
			colPayload: goqu.L(fmt.Sprintf("%s || ?::jsonb", colPayload), patchJSON),
		}).
		Where(goqu.Ex{colBookKey: key})

	return toSQL(updateStmt)
}

func (s *Store) buildCreditQuery(account registry.Identity, amount registry.Amount) (sqlQueryString, error) {
	table := s.tableName(tableBalances)

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(table).
		Rows(goqu.Record{colIdentity: account, colAmount: amount}).
		OnConflict(goqu.DoUpdate(colIdentity, goqu.Record{
			colAmount: goqu.L(fmt.Sprintf("%s.%s + EXCLUDED.%s", table, colAmount, colAmount)),
		}))

	return toSQL(insertStmt)
}

func (s *Store) buildDebitQuery(account registry.Identity, amount registry.Amount) (sqlQueryString, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tableName(tableBalances)).
		Set(goqu.Record{
			colAmount: goqu.L(fmt.Sprintf("%s - ?", colAmount), amount),
		}).
		Where(
			goqu.Ex{colIdentity: account},
			goqu.C(colAmount).Gte(amount),
		)

	return toSQL(updateStmt)
}

func (s *Store) buildOperationalQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableStatus)).
		Select(colOperational).
		Where(goqu.Ex{colID: singletonStatusRowID})

	return toSQL(selectStmt)
}

func (s *Store) buildIdentityExistsQuery(table string, identity registry.Identity) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.V(1)).
		Where(goqu.Ex{colIdentity: identity})

	return toSQL(selectStmt)
}

func (s *Store) buildBookExistsQuery(key registry.BookKey) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableBooks)).
		Select(goqu.V(1)).
		Where(goqu.Ex{colBookKey: key})

	return toSQL(selectStmt)
}

func (s *Store) buildGetBookQuery(key registry.BookKey) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	countStmt := builder.
		From(s.tableName(tableBookTransfers)).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{colBookKey: key})

	selectStmt := builder.
		From(s.tableName(tableBooks)).
		Select(goqu.C(colPayload), countStmt).
		Where(goqu.Ex{colBookKey: key})

	return toSQL(selectStmt)
}

func (s *Store) buildGetTransferQuery(key registry.BookKey, index int) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableBookTransfers)).
		Select(colPayload).
		Where(goqu.Ex{colBookKey: key}).
		Order(goqu.I(colID).Asc()).
		Limit(1).
		Offset(uint(index))

	return toSQL(selectStmt)
}

func (s *Store) buildGetTransfersQuery(key registry.BookKey) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableBookTransfers)).
		Select(colPayload).
		Where(goqu.Ex{colBookKey: key}).
		Order(goqu.I(colID).Asc())

	return toSQL(selectStmt)
}

func (s *Store) buildBalanceQuery(account registry.Identity) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableBalances)).
		Select(colAmount).
		Where(goqu.Ex{colIdentity: account})

	return toSQL(selectStmt)
}

type sqlConvertible interface {
	ToSQL() (string, []any, error)
}

func toSQL(stmt sqlConvertible) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(registrystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// readBookPayload fetches just the payload document for precondition checks.
func (s *Store) readBookPayload(ctx context.Context, key registry.BookKey) (bookPayload, error) {
	sqlQuery, buildErr := s.buildBookPayloadQuery(key)
	if buildErr != nil {
		return bookPayload{}, buildErr
	}

	var payloadJSON []byte
	if err := s.queryRowScan(ctx, sqlQuery, &payloadJSON); err != nil {
		if errors.Is(err, adapters.ErrNoRows) {
			return bookPayload{}, registrystore.ErrNotFound
		}

		return bookPayload{}, errors.Join(registrystore.ErrQueryingFailed, err)
	}

	var payload bookPayload
	if err := jsonUnmarshal.Unmarshal(payloadJSON, &payload); err != nil {
		return bookPayload{}, errors.Join(registrystore.ErrMappingPayloadFailed, err)
	}

	return payload, nil
}

func (s *Store) buildBookPayloadQuery(key registry.BookKey) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName(tableBooks)).
		Select(colPayload).
		Where(goqu.Ex{colBookKey: key})

	return toSQL(selectStmt)
}
