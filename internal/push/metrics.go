package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_sent_total",
		Help: "Push notifications accepted by the push service.",
	})

	pushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_failed_total",
		Help: "Push notifications that failed to send.",
	})

	pushPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_pruned_total",
		Help: "Push subscriptions pruned after the service reported them gone.",
	})
)
