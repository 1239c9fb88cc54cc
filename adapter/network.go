//go:build unix

package adapter

import (
	"net"

	"github.com/srediag/plugin-net/pkg/sock"
)

// NetworkAdapter dials and listens on "host:port" addresses for callers
// that hold a single combined address string.
type NetworkAdapter interface {
	Dial(address string) (int, error)
	Listen(address string, maxFds int) ([]int, error)
}

// SocketNetworkAdapter implements NetworkAdapter over the socket helper
// layer.
type SocketNetworkAdapter struct{}

var _ NetworkAdapter = (*SocketNetworkAdapter)(nil)

// Dial connects to a remote "host:port" address, blocking until the
// connection is established, and returns the descriptor.
func (a *SocketNetworkAdapter) Dial(address string) (int, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return -1, err
	}
	fd, _, err := sock.TCPConnect(host, port)
	return fd, err
}

// Listen opens listening sockets for a local "host:port" address. An
// empty host binds the wildcard address of every supported family.
func (a *SocketNetworkAdapter) Listen(address string, maxFds int) ([]int, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	return sock.TCPServer(port, host, maxFds)
}
