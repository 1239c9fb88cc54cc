//go:build unix

// Package adapter integrates plugin-net endpoints with external systems:
// health monitoring, metrics exposition and address-based dialing.
package adapter

import (
	"fmt"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/plugin-net/api"
	"github.com/srediag/plugin-net/pkg/sock"
)

// ListenerHealth reports liveness for a set of listening sockets. A
// listener is alive while it still reports a bound local address.
type ListenerHealth struct {
	fds []int
}

var _ api.Health = (*ListenerHealth)(nil)

// NewListenerHealth tracks the given listening descriptors.
func NewListenerHealth(fds []int) *ListenerHealth {
	return &ListenerHealth{fds: append([]int(nil), fds...)}
}

// LivenessCheck reports whether every tracked listener is still bound.
func (h *ListenerHealth) LivenessCheck(name string) (bool, error) {
	for _, fd := range h.fds {
		if _, err := sock.LocalAddr(fd); err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
	}
	return true, nil
}

// Handler exposes the listeners as HTTP liveness checks, one per
// descriptor, ready to mount on an admin endpoint.
func (h *ListenerHealth) Handler() healthcheck.Handler {
	handler := healthcheck.NewHandler()
	for _, fd := range h.fds {
		fd := fd
		handler.AddLivenessCheck(fmt.Sprintf("listener-fd-%d", fd), func() error {
			_, err := sock.LocalAddr(fd)
			return err
		})
	}
	return handler
}
