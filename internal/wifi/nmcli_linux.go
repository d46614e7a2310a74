//go:build linux

package wifi

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// NMCLIManager drives Wi-Fi through NetworkManager's nmcli tool.
type NMCLIManager struct {
	// Device is the wireless interface name, e.g. "wlan0".
	Device string
}

// NewNMCLIManager returns a Manager for the given wireless interface.
// Fails if nmcli is not installed.
func NewNMCLIManager(device string) (*NMCLIManager, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, fmt.Errorf("nmcli not found: %w", err)
	}
	return &NMCLIManager{Device: device}, nil
}

// Connect joins the network in station mode, bounded by timeout.
func (m *NMCLIManager) Connect(ssid, password string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	secs := int(timeout.Seconds())
	cmd := exec.CommandContext(ctx, "nmcli", "--wait", strconv.Itoa(secs),
		"device", "wifi", "connect", ssid, "password", password, "ifname", m.Device)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli connect: %w: %s", err, out)
	}
	return nil
}

// StartAccessPoint brings up the configuration hotspot and pins the gateway
// to the fixed portal address.
func (m *NMCLIManager) StartAccessPoint(ssid, password string) error {
	cmd := exec.Command("nmcli", "device", "wifi", "hotspot",
		"ifname", m.Device, "ssid", ssid, "password", password)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli hotspot: %w: %s", err, out)
	}

	// NetworkManager picks 10.42.0.1 by default; clients expect the portal
	// at the fixed gateway address.
	mod := exec.Command("nmcli", "connection", "modify", "Hotspot",
		"ipv4.addresses", APGateway+"/24", "ipv4.method", "shared")
	if out, err := mod.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli hotspot address: %w: %s", err, out)
	}
	up := exec.Command("nmcli", "connection", "up", "Hotspot")
	if out, err := up.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli hotspot up: %w: %s", err, out)
	}
	return nil
}
