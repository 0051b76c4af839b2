package client

import (
	"strconv"
	"time"

	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/prometheus/client_golang/prometheus"
)

// failedCode is the code label of exchanges that didn't result in a response.
const failedCode = "error"

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hclient",
			Name:      "requests_total",
			Help:      "Number of request-response exchanges by method and response code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hclient",
			Name:      "request_duration_seconds",
			Help:      "Time from sending the request until the response head is parsed.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.duration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// observe records a single exchange. A nil receiver records nothing.
func (m *metrics) observe(verb method.Method, response *http.Response, took time.Duration) {
	if m == nil {
		return
	}

	code := failedCode
	if response != nil {
		code = strconv.Itoa(int(response.Code))
	}

	m.requests.WithLabelValues(verb.String(), code).Inc()
	m.duration.WithLabelValues(verb.String()).Observe(took.Seconds())
}
