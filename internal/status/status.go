// Package status provides a thread-safe status tracker for the soil-sensor
// daemon. It is written by the control loop and read by the portal handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/soil-sensor/internal/sensor"
	"github.com/sweeney/soil-sensor/internal/wifi"
)

// CycleCounts tracks sampling and publishing outcomes since startup.
type CycleCounts struct {
	Samples         int
	SampleFailures  int
	Publishes       int
	PublishFailures int
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs     int64
	Broker     string
	HTTPAddr   string
	DryReading int
	WetReading int
	SensorType string
	TempUnit   string
	Brightness int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Reading       sensor.Reading
	HaveReading   bool
	Stale         bool // last sample attempt failed; Reading is the previous cycle's
	Connectivity  wifi.State
	MQTTConnected bool
	DeviceID      string
	Counts        CycleCounts
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, device ID, and
// display config.
func NewTracker(startTime time.Time, deviceID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:    startTime,
			DeviceID:     deviceID,
			Connectivity: wifi.StateDisconnected,
			Config:       cfg,
		},
	}
}

// SetReading records a fresh reading and clears staleness.
func (t *Tracker) SetReading(r sensor.Reading) {
	t.mu.Lock()
	t.snap.Reading = r
	t.snap.HaveReading = true
	t.snap.Stale = false
	t.mu.Unlock()
}

// MarkStale flags the current reading as reused from an earlier cycle.
func (t *Tracker) MarkStale() {
	t.mu.Lock()
	t.snap.Stale = true
	t.mu.Unlock()
}

// SetConnectivity records the supervisor's state.
func (t *Tracker) SetConnectivity(s wifi.State) {
	t.mu.Lock()
	t.snap.Connectivity = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetCounts replaces the cycle counters.
func (t *Tracker) SetCounts(c CycleCounts) {
	t.mu.Lock()
	t.snap.Counts = c
	t.mu.Unlock()
}

// SetConfig refreshes the display configuration after a portal save.
func (t *Tracker) SetConfig(cfg Config) {
	t.mu.Lock()
	t.snap.Config = cfg
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
