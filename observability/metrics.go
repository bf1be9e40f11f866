package observability

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType int

const (
	// Counter metrics only increase
	Counter MetricType = iota
	// Gauge metrics can go up or down
	Gauge
	// Histogram metrics track distributions
	Histogram
)

func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case Histogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Metric represents a single metric measurement. For histograms Value is the
// running sum and Count the number of observations.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Count     uint64            `json:"count,omitempty"`
	Labels    map[string]string `json:"labels"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector interface defines the contract for metrics collection
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	IncrementCounterBy(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)

	GetMetrics() []Metric
	GetMetric(name string, labels map[string]string) (*Metric, bool)
}

// InMemoryMetricsCollector is a simple in-memory metrics collector
type InMemoryMetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewInMemoryMetricsCollector creates a new in-memory metrics collector
func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

// IncrementCounter increments a counter metric by 1
func (c *InMemoryMetricsCollector) IncrementCounter(name string, labels map[string]string) {
	c.IncrementCounterBy(name, 1.0, labels)
}

// IncrementCounterBy increments a counter metric by the specified value
func (c *InMemoryMetricsCollector) IncrementCounterBy(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.lookup(name, Counter, labels)
	metric.Value += value
	metric.Timestamp = time.Now()
}

// SetGauge sets a gauge metric to the specified value
func (c *InMemoryMetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.lookup(name, Gauge, labels)
	metric.Value = value
	metric.Timestamp = time.Now()
}

// RecordHistogram records an observation in a histogram metric
func (c *InMemoryMetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.lookup(name, Histogram, labels)
	metric.Value += value
	metric.Count++
	metric.Timestamp = time.Now()
}

// GetMetrics returns all metrics
func (c *InMemoryMetricsCollector) GetMetrics() []Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	metrics := make([]Metric, 0, len(c.metrics))
	for _, metric := range c.metrics {
		m := *metric
		m.Labels = copyLabels(metric.Labels)
		metrics = append(metrics, m)
	}
	return metrics
}

// GetMetric returns a copy of a specific metric
func (c *InMemoryMetricsCollector) GetMetric(name string, labels map[string]string) (*Metric, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	metric, exists := c.metrics[metricKey(name, labels)]
	if !exists {
		return nil, false
	}

	m := *metric
	m.Labels = copyLabels(metric.Labels)
	return &m, true
}

// lookup returns the metric for name and labels, creating it if needed.
// c.mu must be held.
func (c *InMemoryMetricsCollector) lookup(name string, typ MetricType, labels map[string]string) *Metric {
	key := metricKey(name, labels)
	metric, exists := c.metrics[key]
	if !exists {
		metric = &Metric{
			Name:   name,
			Type:   typ,
			Labels: copyLabels(labels),
		}
		c.metrics[key] = metric
	}
	return metric
}

// metricKey generates a unique key for a metric based on name and sorted labels
func metricKey(name string, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(labels[k])
	}
	return b.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	return maps.Clone(labels)
}

// Queue metric names.
const (
	MetricItemsAdmitted   = "boundq_items_admitted_total"
	MetricItemsEvicted    = "boundq_items_evicted_total"
	MetricItemsTrimmed    = "boundq_items_trimmed_total"
	MetricBatchesRejected = "boundq_batches_rejected_total"
	MetricItemsDequeued   = "boundq_items_dequeued_total"
	MetricDepth           = "boundq_depth"
	MetricDequeueWait     = "boundq_dequeue_wait_ms"
)

// QueueMetrics records the standard metrics for one named queue.
type QueueMetrics struct {
	collector MetricsCollector
	labels    map[string]string
}

// NewQueueMetrics binds collector to the queue called name.
func NewQueueMetrics(collector MetricsCollector, name string) *QueueMetrics {
	return &QueueMetrics{
		collector: collector,
		labels:    map[string]string{"queue": name},
	}
}

// Labels returns the labels attached to every metric of this queue.
func (m *QueueMetrics) Labels() map[string]string {
	return copyLabels(m.labels)
}

// RecordAdmission records the outcome of an admission that was not rejected.
func (m *QueueMetrics) RecordAdmission(admitted, evicted, trimmed int) {
	if admitted > 0 {
		m.collector.IncrementCounterBy(MetricItemsAdmitted, float64(admitted), m.labels)
	}
	if evicted > 0 {
		m.collector.IncrementCounterBy(MetricItemsEvicted, float64(evicted), m.labels)
	}
	if trimmed > 0 {
		m.collector.IncrementCounterBy(MetricItemsTrimmed, float64(trimmed), m.labels)
	}
}

// RecordRejected records a batch refused by a reject policy.
func (m *QueueMetrics) RecordRejected(policy string) {
	labels := copyLabels(m.labels)
	labels["policy"] = policy
	m.collector.IncrementCounter(MetricBatchesRejected, labels)
}

// RecordDequeued records items leaving the queue.
func (m *QueueMetrics) RecordDequeued(n int) {
	if n > 0 {
		m.collector.IncrementCounterBy(MetricItemsDequeued, float64(n), m.labels)
	}
}

// RecordDepth records the current queue length.
func (m *QueueMetrics) RecordDepth(depth int) {
	m.collector.SetGauge(MetricDepth, float64(depth), m.labels)
}

// RecordWait records how long a blocking dequeue waited.
func (m *QueueMetrics) RecordWait(d time.Duration) {
	m.collector.RecordHistogram(MetricDequeueWait, float64(d.Nanoseconds())/1e6, m.labels)
}
