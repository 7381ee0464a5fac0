package powermate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powermate_events_total",
			Help: "Input events read from the device, by type",
		},
		[]string{"type"},
	)

	decodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powermate_decode_errors_total",
			Help: "Reads from the device that did not decode to a whole event",
		},
	)

	ledWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powermate_led_writes_total",
			Help: "LED events written to the device",
		},
		[]string{"status"},
	)
)
