//go:build unix

package transport

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/sys/unix"

	"github.com/srediag/plugin-net/api"
	"github.com/srediag/plugin-net/internal/logging"
	"github.com/srediag/plugin-net/pkg/sock"
)

const (
	defaultMaxListeners = 4
	defaultPoolSize     = 64
	inboundQueueHint    = 1024
)

// Config holds transport creation parameters.
type Config struct {
	// Service is a port number or service name; "0" asks the OS for a port.
	Service string
	// BindAddr is the local address to listen on. Empty binds the
	// wildcard address of every supported family.
	BindAddr string
	// MaxListeners caps the number of listening sockets (default 4).
	MaxListeners int
	// PoolSize caps concurrent per-connection handlers (default 64).
	PoolSize int
	// Meter and Tracer enable optional OpenTelemetry instrumentation.
	Meter  metric.Meter
	Tracer trace.Tracer
}

// Transport is a TCP stream transport: it listens on every matching
// local address, accepts peers into a handler pool and exchanges
// length-framed messages with them.
type Transport struct {
	cfg       Config
	listeners []int
	pool      *ants.Pool
	sessions  cmap.ConcurrentMap[string, *Conn]
	inbound   *queue.Queue
	frames    metric.Int64Counter
	stopped   atomic.Bool
	wg        sync.WaitGroup
}

var _ api.Transport = (*Transport)(nil)

// New builds a Transport from cfg. The transport owns no sockets until
// Start is called.
func New(cfg Config) *Transport {
	if cfg.MaxListeners <= 0 {
		cfg.MaxListeners = defaultMaxListeners
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	return &Transport{
		cfg:      cfg,
		sessions: cmap.New[*Conn](),
		inbound:  queue.New(inboundQueueHint),
	}
}

// Start opens the listening sockets and begins accepting peers, one
// accept loop per listener.
func (t *Transport) Start() error {
	if t.cfg.Tracer != nil {
		_, span := t.cfg.Tracer.Start(context.Background(), "transport.Start")
		defer span.End()
	}
	if t.cfg.Meter != nil {
		if c, err := t.cfg.Meter.Int64Counter("plugin_net.frames_received"); err == nil {
			t.frames = c
		}
	}

	pool, err := ants.NewPool(t.cfg.PoolSize)
	if err != nil {
		return err
	}

	fds, err := sock.TCPServer(t.cfg.Service, t.cfg.BindAddr, t.cfg.MaxListeners)
	if err != nil {
		pool.Release()
		return err
	}

	t.pool = pool
	t.listeners = fds
	for _, fd := range fds {
		t.wg.Add(1)
		go t.acceptLoop(fd)
	}
	return nil
}

// Addrs reports the local endpoints the transport is listening on.
func (t *Transport) Addrs() ([]*sock.Addr, error) {
	addrs := make([]*sock.Addr, 0, len(t.listeners))
	for _, fd := range t.listeners {
		a, err := sock.LocalAddr(fd)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

func (t *Transport) acceptLoop(lfd int) {
	defer t.wg.Done()
	for {
		fd, peer, err := sock.TCPAccept(lfd)
		if err != nil {
			if !t.stopped.Load() {
				acceptErrors.Inc()
				logging.Default().Warnf("accept loop on fd %d terminated: %v", lfd, err)
			}
			return
		}
		if err := sock.SetTCPNoDelay(fd); err != nil {
			logging.Default().Warnf("peer %s: %v", peer, err)
		}

		conn := &Conn{fd: fd, peer: peer}
		key := strconv.Itoa(fd)
		t.sessions.Set(key, conn)
		acceptedConnections.Inc()

		if err := t.pool.Submit(func() { t.serve(key, conn) }); err != nil {
			t.sessions.Remove(key)
			_ = conn.Close()
			logging.Default().Warnf("peer %s rejected: %v", peer, err)
		}
	}
}

func (t *Transport) serve(key string, c *Conn) {
	defer func() {
		t.sessions.Remove(key)
		_ = c.Close()
	}()
	for {
		frame, err := c.Receive()
		if err != nil {
			if !t.stopped.Load() {
				logging.Default().Debugf("peer %s: %v", c.peer, err)
			}
			return
		}
		if t.frames != nil {
			t.frames.Add(context.Background(), 1)
		}
		if err := t.inbound.Put(frame); err != nil {
			return
		}
	}
}

// Receive returns the next inbound frame from any peer, blocking until
// one arrives. After Stop it returns queue.ErrDisposed.
func (t *Transport) Receive() ([]byte, error) {
	items, err := t.inbound.Get(1)
	if err != nil {
		return nil, err
	}
	frame, ok := items[0].([]byte)
	if !ok {
		return nil, ErrBadFrame
	}
	return frame, nil
}

// Send delivers a frame to every connected peer. The last per-peer
// failure is returned; delivery to the remaining peers is still attempted.
func (t *Transport) Send(data []byte) error {
	var lastErr error
	for kv := range t.sessions.IterBuffered() {
		if err := kv.Val.Send(data); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Stop closes the listeners and every session, waits for the accept
// loops, and releases the handler pool. Safe to call more than once.
func (t *Transport) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		return nil
	}
	for _, fd := range t.listeners {
		// shutdown wakes a blocked accept; close alone does not
		_ = shutdown(fd)
		_ = sock.Close(fd)
	}
	t.closeSessions()
	t.wg.Wait()
	// a peer accepted while the first sweep ran is registered by now;
	// sweep again so no session outlives Stop
	t.closeSessions()
	if t.pool != nil {
		_ = t.pool.ReleaseTimeout(time.Second)
	}
	t.inbound.Dispose()
	return nil
}

func (t *Transport) closeSessions() {
	for kv := range t.sessions.IterBuffered() {
		_ = kv.Val.Close()
		t.sessions.Remove(kv.Key)
	}
}

func shutdown(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_RDWR)
}
