// Package api defines public API contracts for plugin-net.
package api

// Transport is the contract for a stream transport endpoint: a listening
// side that owns sockets, accepts peers and exchanges length-framed
// messages with them.
type Transport interface {
	// Start opens the listening sockets and begins accepting peers.
	Start() error
	// Stop closes all sockets and releases transport resources.
	Stop() error
	// Send delivers a frame to every connected peer.
	Send(data []byte) error
	// Receive returns the next inbound frame, blocking until one arrives.
	Receive() ([]byte, error)
}

// Conn is a single established peer connection exchanging length-framed
// messages.
type Conn interface {
	Send(data []byte) error
	Receive() ([]byte, error)
	Close() error
}
