//go:build !linux

package wifi

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("wifi: not supported on this platform (requires Linux)")

// NMCLIManager is not available on non-Linux platforms.
type NMCLIManager struct {
	Device string
}

// NewNMCLIManager returns an error on non-Linux platforms.
func NewNMCLIManager(device string) (*NMCLIManager, error) {
	return nil, errUnsupported
}

func (m *NMCLIManager) Connect(ssid, password string, timeout time.Duration) error {
	return errUnsupported
}

func (m *NMCLIManager) StartAccessPoint(ssid, password string) error {
	return errUnsupported
}
