package postgresengine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/openshelf/library-registry/registrystore"
)

// logQueryWithDuration logs SQL queries with execution time at debug level
// on whichever loggers are configured.
func (s *Store) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	operation string,
	duration time.Duration,
) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level on whichever
// loggers are configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logError logs error information at error level on whichever loggers are
// configured.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration, preferring the
// context-aware collector method when available.
func (s *Store) recordDurationMetrics(
	ctx context.Context,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(registrystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

// recordErrorMetrics records error counters, preferring the context-aware
// collector method when available.
func (s *Store) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(registrystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordConcurrencyConflictMetrics counts guarded writes that affected zero rows.
func (s *Store) recordConcurrencyConflictMetrics(operation string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelConflictType: "concurrency",
	}
	s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
}

// operationObserver encapsulates span, metrics and logging lifecycle for a
// single store operation.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	span      SpanContext
	start     time.Time
}

// observeOperation starts a tracing span (if configured) and returns an
// observer whose succeed/fail methods complete it.
func (s *Store) observeOperation(ctx context.Context, operation string) (*operationObserver, context.Context) {
	observer := &operationObserver{
		s:         s,
		ctx:       ctx,
		operation: operation,
		start:     time.Now(),
	}

	if s.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		observer.ctx, observer.span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return observer, observer.ctx
}

// succeed completes the observation for a successful operation.
func (o *operationObserver) succeed(args ...any) {
	duration := time.Since(o.start)

	o.s.recordDurationMetrics(o.ctx, duration, o.operation, statusSuccess)

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.s.tracingCollector.FinishSpan(o.span, statusSuccess, nil)
	}

	allArgs := append([]any{logAttrDurationMS, o.s.toMilliseconds(duration)}, args...)
	o.s.logOperation(o.ctx, o.operation+logSuffixCompleted, allArgs...)
}

// fail completes the observation for a failed operation and returns err
// unchanged so callers can `return observer.fail(err)`.
func (o *operationObserver) fail(err error) error {
	duration := time.Since(o.start)
	errorType := errorTypeFor(err)

	o.s.recordDurationMetrics(o.ctx, duration, o.operation, statusError)
	o.s.recordErrorMetrics(o.ctx, o.operation, errorType)

	if errors.Is(err, registrystore.ErrConcurrencyConflict) {
		o.s.recordConcurrencyConflictMetrics(o.operation)
	}

	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
	}

	// Typed rejections are expected outcomes of the gate, only infrastructure
	// failures are logged at error level.
	if errorType == errorTypeDatabase {
		o.s.logError(o.ctx, logMsgOperationFailed, err, logAttrOperation, o.operation)
	} else {
		o.s.logOperation(o.ctx, o.operation+logSuffixRejected, logAttrErrorType, errorType)
	}

	return err
}

// errorTypeFor maps store errors onto the metric/span error-type label.
func errorTypeFor(err error) string {
	switch {
	case errors.Is(err, registrystore.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, registrystore.ErrUnauthorized):
		return errorTypeUnauthorized
	case errors.Is(err, registrystore.ErrNotOperational):
		return errorTypeNotOperational
	case errors.Is(err, registrystore.ErrTransferNotFound):
		return errorTypeNotFound
	case errors.Is(err, registrystore.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, registrystore.ErrAlreadyExists):
		return errorTypeAlreadyExists
	case errors.Is(err, registrystore.ErrConflict):
		return errorTypeConflict
	case errors.Is(err, registrystore.ErrInsufficientBalance):
		return errorTypeInsufficientBalance
	default:
		return errorTypeDatabase
	}
}
