//go:build unix

package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/srediag/plugin-net/pkg/sock"
)

const (
	frameHeaderLen = 4
	// maxFrameSize bounds a single frame; a header above it means the
	// stream is corrupt or the peer speaks another protocol.
	maxFrameSize = 16 << 20
)

// Conn is one established peer connection exchanging length-framed
// messages. Send and Receive are each serialized; a Conn may be used by
// one sender and one receiver concurrently.
type Conn struct {
	fd   int
	peer *sock.Addr

	wmu       sync.Mutex
	rmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial establishes a blocking TCP connection to (host, service) and
// prepares it for framed messaging (TCP_NODELAY and SO_KEEPALIVE set).
func Dial(host, service string) (*Conn, error) {
	fd, peer, err := sock.TCPConnect(host, service)
	if err != nil {
		dialErrors.Inc()
		return nil, err
	}
	if err := sock.SetTCPNoDelay(fd); err != nil {
		_ = sock.Close(fd)
		return nil, err
	}
	if err := sock.SetKeepAlive(fd); err != nil {
		_ = sock.Close(fd)
		return nil, err
	}
	return &Conn{fd: fd, peer: peer}, nil
}

// Peer reports the remote endpoint.
func (c *Conn) Peer() *sock.Addr {
	return c.peer
}

// Send writes one frame: a 4-byte big-endian length followed by data.
func (c *Conn) Send(data []byte) error {
	if len(data) > maxFrameSize {
		return ErrFrameTooLarge
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var hdr [frameHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	_, _ = buf.Write(hdr[:])
	_, _ = buf.Write(data)

	c.wmu.Lock()
	defer c.wmu.Unlock()

	n, err := sock.WriteFull(c.fd, buf.B)
	if err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	if n != buf.Len() {
		return fmt.Errorf("send frame: %w", io.ErrShortWrite)
	}
	bytesWritten.Add(float64(n))
	return nil
}

// Receive reads one frame, blocking until it is complete. A clean close
// by the peer before any header byte yields io.EOF.
func (c *Conn) Receive() ([]byte, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	var hdr [frameHeaderLen]byte
	n, err := sock.ReadFull(c.fd, hdr[:])
	if err != nil {
		return nil, fmt.Errorf("receive frame: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}
	if n < frameHeaderLen {
		return nil, io.ErrUnexpectedEOF
	}

	size := binary.BigEndian.Uint32(hdr[:])
	if size > maxFrameSize {
		return nil, ErrFrameTooLarge
	}

	data := make([]byte, size)
	if n, err = sock.ReadFull(c.fd, data); err != nil {
		return nil, fmt.Errorf("receive frame: %w", err)
	}
	if n != int(size) {
		return nil, io.ErrUnexpectedEOF
	}
	bytesRead.Add(float64(n + frameHeaderLen))
	return data, nil
}

// Close shuts the connection down in both directions and releases the
// descriptor. The shutdown wakes any goroutine blocked in Receive.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		_ = shutdown(c.fd)
		c.closeErr = sock.Close(c.fd)
	})
	return c.closeErr
}
