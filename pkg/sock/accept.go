//go:build unix

package sock

import (
	"errors"

	"golang.org/x/sys/unix"
)

// TCPAccept accepts an inbound connection on a listening socket,
// transparently restarting when the call is interrupted by a signal.
// On success it returns the new socket and the peer's address.
func TCPAccept(listenFd int) (int, *Addr, error) {
	for {
		nfd, sa, err := unix.Accept(listenFd)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return -1, nil, errorf(err, "accept: %v", err)
		}
		return nfd, addrFromSockaddr(sa), nil
	}
}
