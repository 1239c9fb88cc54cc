//go:build unix

package sock

import (
	"net"

	"golang.org/x/sys/unix"
)

// NotAnAddress is the string form of an endpoint whose family is neither
// IPv4 nor IPv6, and of a nil *Addr.
const NotAnAddress = "NOT_AN_ADDRESS"

// Addr is a resolved stream-socket endpoint: an address family
// discriminator, the address bytes and the port. The full socket address
// is always carried, so IPv6 endpoints survive copying intact.
type Addr struct {
	Family int // unix.AF_INET, unix.AF_INET6, or 0 when unknown
	IP     net.IP
	Port   int
	Zone   string // IPv6 scoped-address zone, "" otherwise
}

// AddrList is an ordered sequence of candidate endpoints, in the order
// the resolver produced them.
type AddrList []Addr

// String formats an IPv4 address to dotted-quad and an IPv6 address to
// colon-hex. Every other family, and a nil receiver, yields NotAnAddress.
func (a *Addr) String() string {
	if a == nil {
		return NotAnAddress
	}
	switch a.Family {
	case unix.AF_INET, unix.AF_INET6:
		return a.IP.String()
	}
	return NotAnAddress
}

// AddrToString is the function form of Addr.String for callers holding a
// possibly-nil pointer.
func AddrToString(a *Addr) string {
	return a.String()
}

// clone returns a copy whose IP bytes do not alias the receiver.
func (a *Addr) clone() *Addr {
	c := *a
	c.IP = append(net.IP(nil), a.IP...)
	return &c
}

// sockaddr converts the endpoint into the kernel representation used by
// connect(2) and bind(2).
func (a *Addr) sockaddr() (unix.Sockaddr, error) {
	switch a.Family {
	case unix.AF_INET:
		ip4 := a.IP.To4()
		if ip4 == nil {
			return nil, errorf(nil, "invalid IPv4 address: %s", a.IP)
		}
		sa := &unix.SockaddrInet4{Port: a.Port}
		copy(sa.Addr[:], ip4)
		return sa, nil
	case unix.AF_INET6:
		ip16 := a.IP.To16()
		if ip16 == nil {
			return nil, errorf(nil, "invalid IPv6 address: %s", a.IP)
		}
		sa := &unix.SockaddrInet6{Port: a.Port}
		copy(sa.Addr[:], ip16)
		if a.Zone != "" {
			if ifi, err := net.InterfaceByName(a.Zone); err == nil {
				sa.ZoneId = uint32(ifi.Index)
			}
		}
		return sa, nil
	}
	return nil, errorf(nil, "unsupported address family: %d", a.Family)
}

// addrFromSockaddr converts a kernel socket address back into an Addr.
// Unknown families produce an Addr that stringifies to NotAnAddress.
func addrFromSockaddr(sa unix.Sockaddr) *Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &Addr{
			Family: unix.AF_INET,
			IP:     append(net.IP(nil), v.Addr[:]...),
			Port:   v.Port,
		}
	case *unix.SockaddrInet6:
		a := &Addr{
			Family: unix.AF_INET6,
			IP:     append(net.IP(nil), v.Addr[:]...),
			Port:   v.Port,
		}
		if v.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(v.ZoneId)); err == nil {
				a.Zone = ifi.Name
			}
		}
		return a
	}
	return &Addr{}
}

// LocalAddr reports the local endpoint a socket is bound to.
func LocalAddr(fd int) (*Addr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, errorf(err, "getsockname: %v", err)
	}
	return addrFromSockaddr(sa), nil
}
