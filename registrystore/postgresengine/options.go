package postgresengine

import (
	"time"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

// Logger is the plain logging interface accepted by the engine.
type Logger = registrystore.Logger

// ContextualLogger is the context-aware logging interface accepted by the engine.
type ContextualLogger = registrystore.ContextualLogger

// MetricsCollector is the metrics interface accepted by the engine.
type MetricsCollector = registrystore.MetricsCollector

// TracingCollector is the tracing interface accepted by the engine.
type TracingCollector = registrystore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = registrystore.SpanContext

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithTablePrefix namespaces all registry tables with the given prefix,
// e.g. "lending_" yields lending_books, lending_book_transfers and so on.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		s.tablePrefix = prefix
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// The contextual logger will receive log messages with context information
// including automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector will receive operation durations, guarded-write conflicts,
// and database error counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// The collector will receive span creation for every store operation,
// context propagation, and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithNotifier sets the notifier receiving MembershipChanged and
// OperatingStatusChanged notifications emitted by the store.
func WithNotifier(notifier registry.Notifier) Option {
	return func(s *Store) error {
		s.notifier = notifier
		return nil
	}
}

// WithClock overrides the time source used to stamp notifications.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) error {
		s.clock = clock
		return nil
	}
}
