package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	captures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uls24",
			Subsystem: "capture",
			Name:      "captures_total",
			Help:      "Frame captures by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
	captureDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uls24",
			Subsystem: "capture",
			Name:      "duration_seconds",
			Help:      "Frame capture duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel", "outcome"},
	)
	packets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uls24",
			Subsystem: "protocol",
			Name:      "packets_total",
			Help:      "Inbound packets by classification.",
		},
		[]string{"kind"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uls24",
			Subsystem: "protocol",
			Name:      "commands_total",
			Help:      "Parameter commands written to the device.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(captures, captureDuration, packets, commands)
	})
}

func RecordCapture(channel int, outcome string, duration time.Duration) {
	RegisterMetrics()
	ch := strconv.Itoa(channel)
	captures.WithLabelValues(ch, outcome).Inc()
	captureDuration.WithLabelValues(ch, outcome).Observe(duration.Seconds())
}

func RecordPacket(kind string) {
	RegisterMetrics()
	packets.WithLabelValues(kind).Inc()
}

func RecordCommand(kind string) {
	RegisterMetrics()
	commands.WithLabelValues(kind).Inc()
}
