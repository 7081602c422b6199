package net

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	serviceType   = "_sketchboard._tcp"
	sessionPrefix = "session="
)

// Host is a board found on the local network.
type Host struct {
	Name    string
	Addr    string // host:port
	Session string
}

// Advertise announces a host board on port until the returned server is
// shut down.
func Advertise(port int, session string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	info := []string{"SketchBoard", sessionPrefix + session}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d", serviceType, port)
	return server, nil
}

// Browse queries the network for hosts for the given duration.
func Browse(timeout time.Duration) ([]Host, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	var hosts []Host
	go func() {
		defer close(done)
		for e := range entries {
			if h, ok := hostFromEntry(e); ok {
				hosts = append(hosts, h)
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mDNS query: %w", err)
	}
	log.Printf("[MDNS] Found %d boards", len(hosts))
	return hosts, nil
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	h := Host{
		Name: strings.TrimSuffix(e.Name, "."+serviceType+".local."),
		Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
	}
	for _, field := range e.InfoFields {
		if strings.HasPrefix(field, sessionPrefix) {
			h.Session = strings.TrimPrefix(field, sessionPrefix)
		}
	}
	return h, true
}
