package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal counts handled requests by route, method and status.
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "littlelemon_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"path", "method", "status"},
)

// HTTPRequestDuration records request latency by route and method.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "littlelemon_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "method"},
)

var (
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "littlelemon_orders_created_total",
			Help: "Orders placed from carts",
		},
	)

	OrderTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "littlelemon_order_total_amount",
			Help:    "Distribution of order totals",
			Buckets: []float64{5, 10, 20, 50, 100, 200, 500},
		},
	)

	CartLinesAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "littlelemon_cart_lines_added_total",
			Help: "Menu items put into carts",
		},
	)

	ThrottledRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "littlelemon_throttled_requests_total",
			Help: "Requests rejected by the throttle",
		},
		[]string{"scope"},
	)

	MenuCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "littlelemon_menu_cache_lookups_total",
			Help: "Menu listing cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(OrdersCreated, OrderTotal, CartLinesAdded, ThrottledRequests, MenuCacheLookups)
}
