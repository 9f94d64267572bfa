package darklyrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks the number of HTTP requests sent to the site.
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_site_requests_total",
		Help: "The total number of HTTP requests sent to the lyrics site.",
	})
	// requestErrorsTotal tracks requests that failed or produced no body.
	requestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_site_request_errors_total",
		Help: "The total number of failed HTTP requests.",
	})
)
