package transport

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrFrameTooLarge is returned when a frame exceeds maxFrameSize, either
// on Send or when a received header announces an oversized payload.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// ErrBadFrame is returned when the inbound queue yields an unexpected type.
var ErrBadFrame = errors.New("malformed inbound frame")

var (
	acceptedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plugin_net_accepted_connections_total",
		Help: "Total number of inbound connections accepted.",
	})
	acceptErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plugin_net_accept_errors_total",
		Help: "Total number of terminal accept-loop failures.",
	})
	dialErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plugin_net_dial_errors_total",
		Help: "Total number of failed outbound connections.",
	})
	bytesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plugin_net_bytes_read_total",
		Help: "Total bytes read from peers, framing included.",
	})
	bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plugin_net_bytes_written_total",
		Help: "Total bytes written to peers, framing included.",
	})
)

func init() {
	prometheus.MustRegister(acceptedConnections, acceptErrors, dialErrors, bytesRead, bytesWritten)
}
