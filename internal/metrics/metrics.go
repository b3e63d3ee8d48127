// Package metrics is the single source of truth for the console's custom
// Prometheus metrics: names, labels, and help strings. Everything registers
// with the default registry via promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminweb"

// BackendRequestsTotal counts calls to the storefront REST backend.
// Labels:
//   - operation: login, register, list_products, create_product,
//     update_product, delete_product
//   - outcome: "ok", "rejected" (non-2xx with a message), "error" (transport
//     or decode failure)
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests issued to the storefront backend.",
	},
	[]string{"operation", "outcome"},
)

// BackendRequestDuration observes backend call latency per operation.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of storefront backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)
