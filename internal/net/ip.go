package net

import (
	"fmt"
	"log"
	"net"
	"strings"
)

// LinkScheme prefixes share links handed to viewers.
const LinkScheme = "sketchboard://"

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet: fall back to the interfaces.
		return firstIPv4()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 is used on networks without internet access.
func firstIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String()
			}
		}
	}
	log.Println("No suitable local IP found, link generation may fail.")
	return "127.0.0.1"
}

// ShareLink builds the link a viewer joins with.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s", LinkScheme, net.JoinHostPort(ip, fmt.Sprint(port)))
}

// ParseLink extracts "host:port" from a share link or a bare address.
func ParseLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(link, LinkScheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("invalid link %q: %w", link, err)
	}
	return addr, nil
}
