//go:build unix

package sock

import "golang.org/x/sys/unix"

// backlog is passed to listen(2). We use 511 because the kernel does
// backlogsize = roundup_pow_of_two(backlogsize + 1), which gives an
// effective backlog of 512 entries. Note that Linux silently truncates
// the value to net.core.somaxconn.
const backlog = 511

// TCPServer resolves (bindaddr, service) with the passive rules — an
// empty bindaddr yields the wildcard address of each supported family —
// and opens one listening socket per candidate, up to maxFds. The
// descriptors are returned in resolver order. An error is returned only
// when no candidate could be brought to a listening state; on that path
// no descriptor is leaked.
func TCPServer(service, bindaddr string, maxFds int) ([]int, error) {
	addrs, err := resolve(bindaddr, service, true)
	if err != nil {
		return nil, err
	}

	fds := make([]int, 0, maxFds)
	lastErr := error(ErrNoAddress)
	for i := range addrs {
		if len(fds) >= maxFds {
			break
		}
		a := &addrs[i]
		s, err := createStreamSocket(a.Family)
		if err != nil {
			lastErr = err
			continue
		}
		if err := listenOn(s, a); err != nil {
			lastErr = err
			continue
		}
		fds = append(fds, s)
	}
	if len(fds) == 0 {
		return nil, lastErr
	}
	return fds, nil
}

// listenOn binds the socket to the candidate address and starts
// listening. On failure the socket is closed before returning.
func listenOn(fd int, a *Addr) error {
	if a.Family == unix.AF_INET6 {
		// Keep the v6 listener from implicitly covering v4, so separate
		// v4 and v6 listeners on the same port coexist deterministically.
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
	}

	sa, err := a.sockaddr()
	if err != nil {
		_ = unix.Close(fd)
		return err
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return errorf(err, "bind: %v", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return errorf(err, "listen: %v", err)
	}
	return nil
}
