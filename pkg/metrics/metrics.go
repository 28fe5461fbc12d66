package metrics

import "time"

type Metrics interface {
	// Business
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)

	// Unit of work and lifetimes
	RecordCommit(success bool, rows int64, duration time.Duration)
	RecordContextCreated(lifetime string)
	RecordContextDisposed(lifetime string)
	RecordScopeOpened()
	RecordScopeClosed()

	// Infrastructure
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
}
