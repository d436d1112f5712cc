package portalapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "Total number of calls made to the portal API",
		},
		[]string{"operation", "outcome"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_api_request_duration_seconds",
			Help:    "Portal API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// outcome labels
const (
	outcomeOK          = "ok"
	outcomeNetwork     = "network_error"
	outcomeHTTP        = "http_error"
	outcomeApplication = "rejected"
	outcomeDecode      = "decode_error"
)

func recordCall(operation string, start time.Time, err error) {
	requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	switch e := err.(type) {
	case nil:
		return outcomeOK
	case *NetworkError:
		return outcomeNetwork
	case *HTTPError:
		if e.Err != nil {
			return outcomeDecode
		}
		return outcomeHTTP
	case *ApplicationError:
		return outcomeApplication
	default:
		return outcomeDecode
	}
}
