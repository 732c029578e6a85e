package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordCapture(1, "complete", 120*time.Millisecond)
	RecordCapture(2, "failed", 5*time.Second)
	RecordPacket("row")
	RecordPacket("truncated")
	RecordCommand("selchan")
}
