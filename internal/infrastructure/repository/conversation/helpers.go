package conversation

import (
	"time"

	"jan-server/services/assistant-api/internal/infrastructure/metrics"
)

// track times a query and records its duration on return.
//
//	defer track("conversation_find")()
func track(queryType string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQuery(queryType, time.Since(start).Seconds())
	}
}
