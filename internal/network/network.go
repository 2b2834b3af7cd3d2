// Package network reports host connectivity for the status bar and the
// weather page.
package network

import (
	"net"
	"os"
	"strings"
)

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// Info describes the host's network as reported by pi-helper.
type Info struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Monitor answers whether the device is online.
type Monitor struct {
	getenv     func(string) string
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

// NewMonitor creates a Monitor over the process environment and host interfaces.
func NewMonitor() *Monitor {
	return &Monitor{
		getenv:     os.Getenv,
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

// Info returns pi-helper network info, or nil when pi-helper is not running.
func (m *Monitor) Info() *Info {
	s := m.getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &Info{
		Type:       m.getenv(envNetworkType),
		IP:         m.getenv(envNetworkIP),
		Status:     s,
		Gateway:    m.getenv(envNetworkGateway),
		WifiStatus: m.getenv(envNetworkWifiStatus),
		SSID:       m.getenv(envNetworkWifiSSID),
	}
}

// Connected reports connectivity. pi-helper's status wins when present;
// otherwise any up, non-loopback interface with a global unicast address counts.
func (m *Monitor) Connected() bool {
	if info := m.Info(); info != nil {
		switch strings.ToLower(info.Status) {
		case "connected", "up", "online", "ok":
			return true
		}
		return false
	}

	ifaces, err := m.interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := m.addrs(iface)
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}
