package doubles

import (
	"context"
	"sync"
	"time"

	"github.com/openshelf/library-registry/registrystore"
)

// LogRecord represents one recorded logging call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
}

// LoggerSpy captures logging calls for assertions. It implements both
// registrystore.Logger and registrystore.ContextualLogger.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLoggerSpy creates an empty logger spy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) record(level, msg string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args})
}

// Debug implements registrystore.Logger.
func (s *LoggerSpy) Debug(msg string, args ...any) { s.record("debug", msg, args...) }

// Info implements registrystore.Logger.
func (s *LoggerSpy) Info(msg string, args ...any) { s.record("info", msg, args...) }

// Warn implements registrystore.Logger.
func (s *LoggerSpy) Warn(msg string, args ...any) { s.record("warn", msg, args...) }

// Error implements registrystore.Logger.
func (s *LoggerSpy) Error(msg string, args ...any) { s.record("error", msg, args...) }

// DebugContext implements registrystore.ContextualLogger.
func (s *LoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record("debug", msg, args...)
}

// InfoContext implements registrystore.ContextualLogger.
func (s *LoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record("info", msg, args...)
}

// WarnContext implements registrystore.ContextualLogger.
func (s *LoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record("warn", msg, args...)
}

// ErrorContext implements registrystore.ContextualLogger.
func (s *LoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record("error", msg, args...)
}

// Records returns a copy of everything recorded so far.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LogRecord, len(s.records))
	copy(out, s.records)

	return out
}

// OfLevel returns all recorded calls with the given level.
func (s *LoggerSpy) OfLevel(level string) []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LogRecord
	for _, r := range s.records {
		if r.Level == level {
			out = append(out, r)
		}
	}

	return out
}

var (
	_ registrystore.Logger           = (*LoggerSpy)(nil)
	_ registrystore.ContextualLogger = (*LoggerSpy)(nil)
)

// MetricRecord represents one recorded metrics call.
type MetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures metrics calls for assertions. It implements
// registrystore.ContextualMetricsCollector, so engines exercise the
// context-aware paths against it.
type MetricsCollectorSpy struct {
	mu        sync.Mutex
	durations []MetricRecord
	counters  []MetricRecord
	values    []MetricRecord
}

// NewMetricsCollectorSpy creates an empty metrics spy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

// RecordDuration implements registrystore.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, MetricRecord{Metric: metric, Duration: duration, Labels: labels})
}

// IncrementCounter implements registrystore.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = append(s.counters, MetricRecord{Metric: metric, Labels: labels})
}

// RecordValue implements registrystore.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, MetricRecord{Metric: metric, Value: value, Labels: labels})
}

// RecordDurationContext implements registrystore.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext implements registrystore.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

// RecordValueContext implements registrystore.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// Durations returns all recorded duration calls.
func (s *MetricsCollectorSpy) Durations() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MetricRecord, len(s.durations))
	copy(out, s.durations)

	return out
}

// Counters returns all recorded counter increments.
func (s *MetricsCollectorSpy) Counters() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MetricRecord, len(s.counters))
	copy(out, s.counters)

	return out
}

// CounterIncrements returns how often the given counter was incremented.
func (s *MetricsCollectorSpy) CounterIncrements(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.counters {
		if r.Metric == metric {
			count++
		}
	}

	return count
}

var _ registrystore.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)

// SpanRecord represents one recorded tracing span.
type SpanRecord struct {
	Name       string
	Status     string
	Attributes map[string]string
	Finished   bool
}

// spanContextSpy implements registrystore.SpanContext for a single span.
type spanContextSpy struct {
	spy   *TracingCollectorSpy
	index int
}

func (c *spanContextSpy) SetStatus(status string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	c.spy.spans[c.index].Status = status
}

func (c *spanContextSpy) AddAttribute(key, value string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	c.spy.spans[c.index].Attributes[key] = value
}

// TracingCollectorSpy captures spans for assertions.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpanRecord
}

// NewTracingCollectorSpy creates an empty tracing spy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements registrystore.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, registrystore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attributes := make(map[string]string, len(attrs))
	for k, v := range attrs {
		attributes[k] = v
	}

	s.spans = append(s.spans, SpanRecord{Name: name, Attributes: attributes})

	return ctx, &spanContextSpy{spy: s, index: len(s.spans) - 1}
}

// FinishSpan implements registrystore.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx registrystore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*spanContextSpy)
	if !ok {
		return
	}

	for k, v := range attrs {
		span.AddAttribute(k, v)
	}
	span.SetStatus(status)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans[span.index].Finished = true
}

// Spans returns a copy of all recorded spans.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpanRecord, len(s.spans))
	copy(out, s.spans)

	return out
}

var _ registrystore.TracingCollector = (*TracingCollectorSpy)(nil)
