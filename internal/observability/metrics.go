package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK        = "ok"
	OutcomeTruncated = "truncated"
	OutcomeError     = "error"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fixctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	decodeMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixctl",
			Subsystem: "decode",
			Name:      "messages_total",
			Help:      "Decoded messages by outcome.",
		},
		[]string{"source", "outcome"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fixctl",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Time spent decoding one message.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		},
		[]string{"source"},
	)
	decodeFields = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fixctl",
			Subsystem: "decode",
			Name:      "fields",
			Help:      "Top-level fields per decoded message.",
			Buckets:   prometheus.LinearBuckets(0, 8, 10),
		},
		[]string{"source"},
	)
	dictionarySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fixctl",
			Subsystem: "dictionary",
			Name:      "entries",
			Help:      "Loaded dictionary entries by kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodeMessages, decodeDuration, decodeFields, dictionarySize)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// DecodeOutcome classifies a decode result for the outcome label.
func DecodeOutcome(msg *protocol.Message, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case msg != nil && msg.Truncated:
		return OutcomeTruncated
	default:
		return OutcomeOK
	}
}

func RecordDecode(source string, msg *protocol.Message, err error, duration time.Duration) {
	RegisterMetrics()
	decodeMessages.WithLabelValues(source, DecodeOutcome(msg, err)).Inc()
	decodeDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err == nil {
		decodeFields.WithLabelValues(source).Observe(float64(msg.Len()))
	}
}

func RecordDictionary(fields, groups int) {
	RegisterMetrics()
	dictionarySize.WithLabelValues("fields").Set(float64(fields))
	dictionarySize.WithLabelValues("groups").Set(float64(groups))
}
