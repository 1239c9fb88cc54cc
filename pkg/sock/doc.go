// Package sock provides a thin portability and ergonomics layer over
// Berkeley-style stream sockets: TCP client connections (blocking or
// non-blocking), listening endpoints on all matching local addresses
// (IPv4 and IPv6), accepting inbound connections, common socket options,
// and full-count read/write of a caller-specified byte count.
//
// Name resolution is folded into the connect and listen primitives.
// Every operation is a synchronous call on the invoking thread; there is
// no background state, no locking, and no retry policy. Thread-safety is
// inherited from the OS syscalls on per-descriptor granularity.
//
// Higher layers (pkg/transport, adapters) consume sockets purely through
// the operations of this package.
package sock
