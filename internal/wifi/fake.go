package wifi

import "time"

// FakeManager is a scripted test double for Manager.
type FakeManager struct {
	// ConnectError, if set, is returned by Connect (simulates timeout or
	// join failure).
	ConnectError error

	// APError, if set, is returned by StartAccessPoint.
	APError error

	// Recorded calls.
	ConnectSSID     string
	ConnectPassword string
	ConnectTimeout  time.Duration
	APStarted       bool
	APSSID          string
	APPassword      string
}

// Connect records the attempt and returns ConnectError.
func (f *FakeManager) Connect(ssid, password string, timeout time.Duration) error {
	f.ConnectSSID = ssid
	f.ConnectPassword = password
	f.ConnectTimeout = timeout
	return f.ConnectError
}

// StartAccessPoint records the attempt and returns APError.
func (f *FakeManager) StartAccessPoint(ssid, password string) error {
	f.APStarted = true
	f.APSSID = ssid
	f.APPassword = password
	return f.APError
}
