package postgresengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/library-registry/registrystore"
	"github.com/openshelf/library-registry/testutil/doubles"
)

// A rejected owner check fails before any database access, so the whole
// observability surface can be exercised without a connection.
func Test_OperationObserver_When_TheGateRejectsTheCaller(t *testing.T) {
	ctx := context.Background()
	loggerSpy := doubles.NewLoggerSpy()
	metricsSpy := doubles.NewMetricsCollectorSpy()
	tracingSpy := doubles.NewTracingCollectorSpy()

	s := &Store{
		owner:            "store-owner",
		clock:            time.Now,
		logger:           loggerSpy,
		contextualLogger: loggerSpy,
		metricsCollector: metricsSpy,
		tracingCollector: tracingSpy,
	}

	err := s.SetOperatingStatus(ctx, "not-the-owner", false)
	require.ErrorIs(t, err, registrystore.ErrUnauthorized)

	durations := metricsSpy.Durations()
	require.Len(t, durations, 1)
	assert.Equal(t, metricOperationDuration, durations[0].Metric)
	assert.Equal(t, statusError, durations[0].Labels[labelStatus])

	assert.Equal(t, 1, metricsSpy.CounterIncrements(metricDatabaseErrors))
	counters := metricsSpy.Counters()
	require.Len(t, counters, 1)
	assert.Equal(t, errorTypeUnauthorized, counters[0].Labels[spanAttrErrorType])

	spans := tracingSpy.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, spanNamePrefix+operationSetOperatingStatus, spans[0].Name)
	assert.Equal(t, statusError, spans[0].Status)
	assert.Equal(t, errorTypeUnauthorized, spans[0].Attributes[spanAttrErrorType])
	assert.True(t, spans[0].Finished)

	// A typed rejection is an expected outcome, logged at info, not error.
	assert.Empty(t, loggerSpy.OfLevel("error"))
	infoRecords := loggerSpy.OfLevel("info")
	require.Len(t, infoRecords, 2) // plain logger plus contextual logger
	assert.Contains(t, infoRecords[0].Message, operationSetOperatingStatus+logSuffixRejected)
}

func Test_OperationObserver_When_TheOperationSucceeds(t *testing.T) {
	loggerSpy := doubles.NewLoggerSpy()
	metricsSpy := doubles.NewMetricsCollectorSpy()
	tracingSpy := doubles.NewTracingCollectorSpy()

	s := &Store{
		clock:            time.Now,
		logger:           loggerSpy,
		contextualLogger: loggerSpy,
		metricsCollector: metricsSpy,
		tracingCollector: tracingSpy,
	}

	observer, _ := s.observeOperation(context.Background(), operationCredit)
	observer.succeed(logAttrAmount, 50)

	durations := metricsSpy.Durations()
	require.Len(t, durations, 1)
	assert.Equal(t, statusSuccess, durations[0].Labels[labelStatus])

	spans := tracingSpy.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, statusSuccess, spans[0].Status)
	assert.True(t, spans[0].Finished)

	infoRecords := loggerSpy.OfLevel("info")
	require.Len(t, infoRecords, 2)
	assert.Contains(t, infoRecords[0].Message, operationCredit+logSuffixCompleted)
}

func Test_ErrorTypeFor_MapsAllSentinels(t *testing.T) {
	assert.Equal(t, errorTypeConcurrencyConflict, errorTypeFor(registrystore.ErrConcurrencyConflict))
	assert.Equal(t, errorTypeUnauthorized, errorTypeFor(registrystore.ErrUnauthorized))
	assert.Equal(t, errorTypeNotOperational, errorTypeFor(registrystore.ErrNotOperational))
	assert.Equal(t, errorTypeNotFound, errorTypeFor(registrystore.ErrNotFound))
	assert.Equal(t, errorTypeNotFound, errorTypeFor(registrystore.ErrTransferNotFound))
	assert.Equal(t, errorTypeAlreadyExists, errorTypeFor(registrystore.ErrAlreadyExists))
	assert.Equal(t, errorTypeConflict, errorTypeFor(registrystore.ErrConflict))
	assert.Equal(t, errorTypeInsufficientBalance, errorTypeFor(registrystore.ErrInsufficientBalance))
	assert.Equal(t, errorTypeDatabase, errorTypeFor(registrystore.ErrQueryingFailed))
}
