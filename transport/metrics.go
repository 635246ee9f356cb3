package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerlink_frames_sent_total",
		Help: "Frames written to the wire, by message type",
	}, []string{"type"})

	framesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerlink_frames_received_total",
		Help: "Frames decoded from the wire, by message type",
	}, []string{"type"})

	decodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "powerlink_decode_errors_total",
		Help: "Captured frames the codec rejected",
	})
)
