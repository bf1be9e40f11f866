// Package observability provides structured logging and metrics for boundq.
//
// # Structured Logging
//
// Logging is built on Go's slog package:
//
//	logger := observability.NewLogger(observability.LoggerConfig{
//		Level:  slog.LevelInfo,
//		Format: observability.JSON,
//		Output: os.Stdout,
//	})
//
//	logger.Warn("queue capacity exceeded, truncating",
//		observability.QueueName("ingest"),
//		observability.QueueCapacity(128),
//		observability.EvictedCount(4),
//	)
//
// Overflow diagnostics are emitted at Warn and are never dropped by sampling.
// Sampling only thins Debug and Info records:
//
//	logger := observability.NewLogger(observability.LoggerConfig{
//		Level:  slog.LevelDebug,
//		Format: observability.JSON,
//		Output: os.Stdout,
//		Sampling: &observability.SamplingConfig{
//			Enabled:      true,
//			Rate:         0.1,
//			MaxPerSecond: 100,
//		},
//	})
//
// # Metrics
//
// QueueMetrics records admissions, evictions, rejections, dequeues, depth and
// blocking wait time into any MetricsCollector. InMemoryMetricsCollector is
// the bundled implementation:
//
//	collector := observability.NewInMemoryMetricsCollector()
//	q, _ := queue.New[int](queue.Config{
//		Name:     "ingest",
//		Capacity: 128,
//		Metrics:  collector,
//	})
package observability
