//go:build unix

package sock

import (
	"errors"

	"golang.org/x/sys/unix"
)

// TCPConnect resolves (host, service) and establishes a blocking TCP
// connection to the first reachable candidate. It returns the connected
// socket and the candidate's address; candidates are tried in resolver
// order, so an unreachable IPv6 endpoint falls back to IPv4.
func TCPConnect(host, service string) (int, *Addr, error) {
	return tcpGenericConnect(host, service, false)
}

// TCPConnectNonBlock is TCPConnect with the socket switched to
// non-blocking mode before the connect is initiated. Success includes the
// connection-pending case (EINPROGRESS); the return value alone does not
// distinguish an immediately-established connection from a pending one.
func TCPConnectNonBlock(host, service string) (int, *Addr, error) {
	return tcpGenericConnect(host, service, true)
}

func tcpGenericConnect(host, service string, nonblock bool) (int, *Addr, error) {
	addrs, err := resolve(host, service, false)
	if err != nil {
		return -1, nil, err
	}

	lastErr := error(ErrNoAddress)
	for i := range addrs {
		a := &addrs[i]
		sa, err := a.sockaddr()
		if err != nil {
			lastErr = err
			continue
		}
		// Socket creation can fail per family on single-stack hosts;
		// skip to the next candidate.
		s, err := createStreamSocket(a.Family)
		if err != nil {
			lastErr = err
			continue
		}

		if nonblock {
			if err := SetNonBlocking(s); err != nil {
				// Local misconfiguration, not a per-candidate condition.
				_ = unix.Close(s)
				return -1, nil, err
			}
		}

		err = unix.Connect(s, sa)
		if err == nil || (nonblock && errors.Is(err, unix.EINPROGRESS)) {
			return s, a.clone(), nil
		}

		lastErr = errorf(err, "connect: %v", err)
		_ = unix.Close(s)
	}
	return -1, nil, lastErr
}

// TCPConnectNonBlockAddr performs a non-blocking connect to a single
// pre-resolved endpoint, for callers that resolve once and walk candidates
// themselves.
func TCPConnectNonBlockAddr(addr *Addr) (int, *Addr, error) {
	sa, err := addr.sockaddr()
	if err != nil {
		return -1, nil, err
	}
	s, err := createStreamSocket(addr.Family)
	if err != nil {
		return -1, nil, err
	}
	if err := SetNonBlocking(s); err != nil {
		_ = unix.Close(s)
		return -1, nil, err
	}

	err = unix.Connect(s, sa)
	if err == nil || errors.Is(err, unix.EINPROGRESS) {
		return s, addr.clone(), nil
	}
	_ = unix.Close(s)
	return -1, nil, errorf(err, "connect: %v", err)
}
