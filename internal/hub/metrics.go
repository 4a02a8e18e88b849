package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_hub_connected_clients",
		Help: "Number of websocket clients currently connected to the hub.",
	})

	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_hub_dropped_events_total",
		Help: "Inbound events dropped by the per-client rate limiter.",
	})
)
