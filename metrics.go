package funnelwire

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelwire_requests_total",
			Help: "Requests posted to the service, by action and HTTP status.",
		},
		[]string{"action", "status"},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelwire_actions_total",
			Help: "Wire actions submitted, by action kind.",
		},
		[]string{"kind"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelwire_errors_total",
			Help: "Errors surfaced to callers, by error kind.",
		},
		[]string{"kind"},
	)
)

func errorKind(err error) string {
	var (
		validation *ValidationError
		badResp    *BadResponseError
		notFound   *ResourceNotFoundError
		config     *ConfigurationError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &badResp):
		return "bad_response"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &config):
		return "configuration"
	default:
		return "transport"
	}
}

func countError(err error) {
	if err != nil {
		errorsTotal.WithLabelValues(errorKind(err)).Inc()
	}
}
