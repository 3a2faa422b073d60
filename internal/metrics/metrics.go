package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_webhook_requests_total",
			Help: "Webhook requests by verb and outcome",
		},
		[]string{"verb", "outcome"},
	)

	EventsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_events_routed_total",
			Help: "Inbound messaging events by kind",
		},
		[]string{"kind"},
	)

	OutboundSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_outbound_sends_total",
			Help: "Send API calls by outcome",
		},
		[]string{"outcome"},
	)

	ScriptRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_script_runs_total",
			Help: "Scripted flows by script name and outcome",
		},
		[]string{"script", "outcome"},
	)

	EventsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "responder_events_in_flight",
			Help: "Events currently being handled",
		},
	)
)
