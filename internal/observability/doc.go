// Package observability provides structured logging and runtime metrics
// for the advisor API.
//
// This package implements:
//   - zap logger construction from level/format settings
//   - Request-scoped loggers carrying the request ID
//   - Prometheus per-provider attempt counters and latency histograms
package observability
