package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tbr3_messages_sent_total",
			Help: "Total messages persisted",
		},
	)

	PushesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tbr3_pushes_delivered_total",
			Help: "Messages pushed to a live recipient connection",
		},
	)

	PushesMissed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tbr3_pushes_missed_total",
			Help: "Messages whose recipient had no live connection at send time",
		},
	)

	ReadReceipts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tbr3_read_receipts_total",
			Help: "Messages transitioned to read",
		},
	)

	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tbr3_live_connections",
			Help: "Currently open websocket connections",
		},
	)

	TypingEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tbr3_typing_events_total",
			Help: "Typing/stop-typing signals relayed",
		},
	)
)
