//go:build unix

package sock

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// Resolve requests stream-socket candidates for (host, service). host may
// be empty, in which case the wildcard rules apply; service is a port
// number or a service name. Both IPv4 and IPv6 candidates are eligible,
// in resolver order.
func Resolve(host, service string) (AddrList, error) {
	return resolve(host, service, false)
}

// resolve produces the ordered candidate endpoints. When passive is set an
// empty host yields the wildcard address of each supported family, mirroring
// getaddrinfo's AI_PASSIVE behavior; otherwise an empty host yields the
// loopback addresses.
func resolve(host, service string, passive bool) (AddrList, error) {
	port, err := lookupPort(service)
	if err != nil {
		return nil, errorf(err, "can't resolve %s: %v", host, err)
	}

	if host == "" {
		if passive {
			return AddrList{
				{Family: unix.AF_INET6, IP: net.IPv6unspecified, Port: port},
				{Family: unix.AF_INET, IP: net.IPv4zero.To4(), Port: port},
			}, nil
		}
		return AddrList{
			{Family: unix.AF_INET6, IP: net.IPv6loopback, Port: port},
			{Family: unix.AF_INET, IP: net.IPv4(127, 0, 0, 1).To4(), Port: port},
		}, nil
	}

	// Literal addresses skip the resolver, as AI_NUMERICHOST would.
	if ip := net.ParseIP(host); ip != nil {
		return AddrList{addrForIP(ip, "", port)}, nil
	}

	ipaddrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil {
		return nil, errorf(err, "can't resolve %s: %v", host, err)
	}
	if len(ipaddrs) == 0 {
		return nil, errorf(ErrNoAddress, "can't resolve %s: %v", host, ErrNoAddress)
	}

	list := make(AddrList, 0, len(ipaddrs))
	for _, ia := range ipaddrs {
		list = append(list, addrForIP(ia.IP, ia.Zone, port))
	}
	return list, nil
}

func addrForIP(ip net.IP, zone string, port int) Addr {
	if ip4 := ip.To4(); ip4 != nil {
		return Addr{Family: unix.AF_INET, IP: ip4, Port: port}
	}
	return Addr{Family: unix.AF_INET6, IP: ip.To16(), Port: port, Zone: zone}
}

func lookupPort(service string) (int, error) {
	if n, err := strconv.Atoi(service); err == nil {
		if n < 0 || n > 65535 {
			return 0, fmt.Errorf("invalid port number: %s", service)
		}
		return n, nil
	}
	return net.LookupPort("tcp", service)
}
