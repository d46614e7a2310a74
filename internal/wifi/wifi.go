// Package wifi decides the device's connectivity mode at boot: join the
// configured network as a station, or fall back to hosting the fixed
// configuration access point.
package wifi

import "time"

// State is the connectivity state owned by the Supervisor.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateStation      State = "CONNECTED_STATION"
	StateAPConfig     State = "AP_CONFIG_MODE"
)

// Fixed access-point parameters for configuration mode.
const (
	APSSID     = "Moisture_Config_AP"
	APPassword = "configpass123"
	APGateway  = "192.168.4.1"
)

// ConnectTimeout bounds a station join attempt. Matches the firmware this
// daemon replaced, which polled the link for 15 seconds before giving up.
const ConnectTimeout = 15 * time.Second

// Manager performs the actual Wi-Fi operations. The real implementation
// drives the system network manager; the fake is scripted for tests.
type Manager interface {
	// Connect joins the given network in station mode, blocking up to
	// timeout. A timeout or join failure returns an error.
	Connect(ssid, password string, timeout time.Duration) error

	// StartAccessPoint brings up the configuration AP with the fixed
	// SSID/password and gateway address.
	StartAccessPoint(ssid, password string) error
}
