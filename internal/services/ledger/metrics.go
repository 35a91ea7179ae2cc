package ledger

// MetricsCollector receives operation outcomes from the ledger service.
type MetricsCollector interface {
	RecordOperationResult(operation, result string)
	RecordError(operation, errKind string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationResult(string, string) {}
func (n *NoopMetricsCollector) RecordError(string, string)          {}
