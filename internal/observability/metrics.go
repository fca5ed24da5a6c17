package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	busMessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "bus",
			Name:      "messages_received_total",
			Help:      "Bus messages received, by dispatch outcome.",
		},
		[]string{"outcome"},
	)
	busMessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "bus",
			Name:      "messages_sent_total",
			Help:      "Bus messages sent, by kind.",
		},
		[]string{"kind"},
	)
	svCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "sv",
			Name:      "commands_total",
			Help:      "SV read/write commands processed.",
		},
		[]string{"command"},
	)
	inputReports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "channels",
			Name:      "input_reports_total",
			Help:      "Input edge reports sent to the bus.",
		},
	)
	outputActuations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "channels",
			Name:      "output_actuations_total",
			Help:      "Output channel actuations, by policy.",
		},
		[]string{"policy"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnioctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status API requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lnioctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			busMessagesReceived,
			busMessagesSent,
			svCommands,
			inputReports,
			outputActuations,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordMessageReceived(outcome string) {
	busMessagesReceived.WithLabelValues(outcome).Inc()
}

func RecordMessageSent(kind string) {
	busMessagesSent.WithLabelValues(kind).Inc()
}

func RecordSVCommand(command string) {
	svCommands.WithLabelValues(command).Inc()
}

func RecordInputReport() {
	inputReports.Inc()
}

func RecordActuation(policy string) {
	outputActuations.WithLabelValues(policy).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, code).Inc()
	httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}
