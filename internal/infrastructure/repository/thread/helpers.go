package thread

import (
	"time"

	"jan-server/services/assistant-api/internal/infrastructure/metrics"
)

// track times a query and records its duration on return.
//
//	defer track("thread_find")()
func track(queryType string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQuery(queryType, time.Since(start).Seconds())
	}
}
