package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)
	RecordMessageReceived("peer")
	RecordMessageSent("input_report")
	RecordSVCommand("read")
	RecordInputReport()
	RecordActuation("pulse")
}
