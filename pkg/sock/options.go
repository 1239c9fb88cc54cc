//go:build unix

package sock

import "golang.org/x/sys/unix"

// SetNonBlocking puts the socket into non-blocking mode by adding
// O_NONBLOCK to its file-status flags. fcntl(2) for F_GETFL and F_SETFL
// can't be interrupted by a signal.
func SetNonBlocking(fd int) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return errorf(err, "fcntl(F_GETFL): %v", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_NONBLOCK); err != nil {
		return errorf(err, "fcntl(F_SETFL,O_NONBLOCK): %v", err)
	}
	return nil
}

// SetTCPNoDelay disables Nagle's algorithm on the socket.
func SetTCPNoDelay(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return errorf(err, "setsockopt TCP_NODELAY: %v", err)
	}
	return nil
}

// SetKeepAlive enables SO_KEEPALIVE on the socket.
func SetKeepAlive(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return errorf(err, "setsockopt SO_KEEPALIVE: %v", err)
	}
	return nil
}

// SetSendBuffer sets the kernel send buffer (SO_SNDBUF) to size bytes.
func SetSendBuffer(fd, size int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, size); err != nil {
		return errorf(err, "setsockopt SO_SNDBUF: %v", err)
	}
	return nil
}

// Close releases the socket descriptor.
func Close(fd int) error {
	return unix.Close(fd)
}

// createStreamSocket creates a stream socket in the given address family.
// SO_REUSEADDR is set unconditionally so that bind on a recently-closed
// local port succeeds immediately; connection-intensive callers can
// close and reopen sockets at a high rate.
func createStreamSocket(family int) (int, error) {
	s, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, errorf(err, "creating socket: %v", err)
	}
	if err := unix.SetsockoptInt(s, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(s)
		return -1, errorf(err, "setsockopt SO_REUSEADDR: %v", err)
	}
	return s, nil
}
