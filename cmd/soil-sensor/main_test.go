package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/led"
	"github.com/sweeney/soil-sensor/internal/mqtt"
	"github.com/sweeney/soil-sensor/internal/sensor"
	"github.com/sweeney/soil-sensor/internal/status"
	"github.com/sweeney/soil-sensor/internal/wifi"
)

// loopFixture drives runLoop with injected channels. Ticks are unbuffered:
// a send returns once the loop has picked it up, and the next send returns
// only after the previous cycle finished, which makes assertions after
// shutdown race-free.
type loopFixture struct {
	rdr     *sensor.FakeReader
	climate *sensor.FakeClimate
	strip   *led.FakeStrip
	pub     *mqtt.FakeClient
	store   *config.Store
	tracker *status.Tracker

	tick   chan time.Time
	sig    chan os.Signal
	reboot chan struct{}

	errCh chan error
}

func startLoop(t *testing.T, state wifi.State, fx *loopFixture) *loopFixture {
	t.Helper()

	if fx == nil {
		fx = &loopFixture{}
	}
	if fx.store == nil {
		store, err := config.Open(filepath.Join(t.TempDir(), "config.json"), zerolog.Nop())
		if !errors.Is(err, config.ErrMissingConfig) {
			t.Fatalf("open store: %v", err)
		}
		fx.store = store
	}
	if fx.rdr == nil {
		fx.rdr = sensor.NewFakeReader(6245)
	}
	if fx.strip == nil {
		fx.strip = &led.FakeStrip{}
	}
	if fx.pub == nil {
		fx.pub = mqtt.NewFakeClient("042")
		fx.pub.Connected = true
	}
	fx.tracker = status.NewTracker(time.Now(), "042", status.Config{})
	fx.tracker.SetConnectivity(state)

	fx.tick = make(chan time.Time)
	fx.sig = make(chan os.Signal, 1)
	fx.reboot = make(chan struct{}, 1)
	fx.errCh = make(chan error, 1)

	var climate sensor.Climate
	if fx.climate != nil {
		climate = fx.climate
	}

	go func() {
		fx.errCh <- runLoop(fx.rdr, climate, fx.strip, fx.pub, fx.pub, fx.store, fx.tracker, state,
			fx.tick, fx.sig, fx.pub.Commands(), fx.reboot, zerolog.Nop())
	}()
	return fx
}

func (fx *loopFixture) tickOnce(t *testing.T) {
	t.Helper()
	select {
	case fx.tick <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not accept tick")
	}
}

func (fx *loopFixture) stop(t *testing.T) error {
	t.Helper()
	fx.sig <- syscall.SIGTERM
	select {
	case err := <-fx.errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not shut down")
		return nil
	}
}

func (fx *loopFixture) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-fx.errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return")
		return nil
	}
}

func TestRunLoopCycleSamplesIndicatesPublishes(t *testing.T) {
	fx := startLoop(t, wifi.StateStation, nil)

	fx.tickOnce(t)
	fx.tickOnce(t)
	if err := fx.stop(t); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	// raw 6245 against the default 8191/4300 calibration is 50%.
	snap := fx.tracker.Snapshot()
	if !snap.HaveReading || snap.Reading.MoisturePct != 50 {
		t.Errorf("tracker reading: %+v", snap.Reading)
	}
	if snap.Counts.Samples != 2 || snap.Counts.Publishes != 2 {
		t.Errorf("counts: %+v", snap.Counts)
	}

	// 50%% is the green band, scaled by the default brightness of 128.
	if len(fx.strip.Frames) < 2 {
		t.Fatalf("frames: got %d", len(fx.strip.Frames))
	}
	want := led.Color{G: 128}
	if fx.strip.Frames[0] != want {
		t.Errorf("frame: got %+v, want %+v", fx.strip.Frames[0], want)
	}

	if len(fx.pub.Payloads) != 2 {
		t.Fatalf("payloads: got %d", len(fx.pub.Payloads))
	}
	var p mqtt.Payload
	if err := json.Unmarshal(fx.pub.Payloads[0], &p); err != nil {
		t.Fatalf("payload json: %v", err)
	}
	if p.Moisture != 50 || p.Raw != 6245 || p.DeviceID != "042" {
		t.Errorf("payload: %+v", p)
	}
	if p.Temp != nil || p.Humidity != nil {
		t.Error("climate fields must be null without a climate sensor")
	}

	// Final frame after SIGTERM blanks the LED.
	if fx.strip.Last() != led.Off {
		t.Errorf("shutdown frame: got %+v, want Off", fx.strip.Last())
	}
}

func TestRunLoopClimateReading(t *testing.T) {
	fx := startLoop(t, wifi.StateStation, &loopFixture{
		climate: &sensor.FakeClimate{TempC: 20, Humidity: 55},
	})

	fx.tickOnce(t)
	if err := fx.stop(t); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	var p mqtt.Payload
	if err := json.Unmarshal(fx.pub.Payloads[0], &p); err != nil {
		t.Fatalf("payload json: %v", err)
	}
	if p.Temp == nil || *p.Temp != 20 {
		t.Errorf("temp: got %v", p.Temp)
	}
	if p.Humidity == nil || *p.Humidity != 55 {
		t.Errorf("humidity: got %v", p.Humidity)
	}
}

func TestRunLoopPublishFailureDoesNotCrash(t *testing.T) {
	pub := mqtt.NewFakeClient("042")
	pub.PublishError = errors.New("broker unreachable")
	fx := startLoop(t, wifi.StateStation, &loopFixture{pub: pub})

	fx.tickOnce(t)
	fx.tickOnce(t)
	if err := fx.stop(t); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	snap := fx.tracker.Snapshot()
	if snap.Counts.PublishFailures != 2 {
		t.Errorf("publish failures: got %d, want 2", snap.Counts.PublishFailures)
	}
	// Sampling and indication still completed both cycles.
	if snap.Counts.Samples != 2 {
		t.Errorf("samples: got %d", snap.Counts.Samples)
	}
	if len(fx.strip.Frames) < 2 {
		t.Errorf("led frames: got %d", len(fx.strip.Frames))
	}
}

func TestRunLoopSensorFailureMarksStale(t *testing.T) {
	rdr := sensor.NewFakeReader(6245)
	fx := startLoop(t, wifi.StateStation, &loopFixture{rdr: rdr})

	fx.tickOnce(t) // good sample
	rdr.ReadError = errors.New("i2c timeout")
	fx.tickOnce(t) // failed sample
	if err := fx.stop(t); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	snap := fx.tracker.Snapshot()
	if !snap.Stale {
		t.Error("reading should be marked stale after a failed sample")
	}
	if snap.Reading.Raw != 6245 {
		t.Error("previous reading should be retained")
	}
	if snap.Counts.SampleFailures != 1 {
		t.Errorf("sample failures: got %d", snap.Counts.SampleFailures)
	}
	// The stale reading is not re-published.
	if len(fx.pub.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(fx.pub.Payloads))
	}
	// The LED keeps showing the previous value.
	if len(fx.strip.Frames) != 3 { // two cycles + shutdown blank
		t.Errorf("frames: got %d", len(fx.strip.Frames))
	}
}

func TestRunLoopRebootTakesEffectNextCycle(t *testing.T) {
	fx := startLoop(t, wifi.StateStation, nil)

	fx.tickOnce(t)
	fx.reboot <- struct{}{}

	// Queued, not immediate: the loop must still be running.
	select {
	case err := <-fx.errCh:
		t.Fatalf("loop exited before the next cycle: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	fx.tickOnce(t)
	if err := fx.wait(t); !errors.Is(err, errRebootRequested) {
		t.Fatalf("got err=%v, want errRebootRequested", err)
	}

	// The reboot tick must not have sampled or published.
	if len(fx.pub.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(fx.pub.Payloads))
	}
}

func TestRunLoopMQTTRebootCommand(t *testing.T) {
	fx := startLoop(t, wifi.StateStation, nil)

	fx.tickOnce(t)
	fx.pub.SendCommand(mqtt.CommandReboot)
	fx.tickOnce(t)

	if err := fx.wait(t); !errors.Is(err, errRebootRequested) {
		t.Fatalf("got err=%v, want errRebootRequested", err)
	}
}

func TestRunLoopUnknownCommandIgnored(t *testing.T) {
	fx := startLoop(t, wifi.StateStation, nil)

	fx.tickOnce(t)
	fx.pub.SendCommand("dance")
	fx.tickOnce(t)
	fx.tickOnce(t)

	if err := fx.stop(t); err != nil {
		t.Fatalf("unknown command must not stop the loop: %v", err)
	}
	if snap := fx.tracker.Snapshot(); snap.Counts.Samples != 3 {
		t.Errorf("samples: got %d, want 3", snap.Counts.Samples)
	}
}

func TestRunLoopAPModeBlinksWithoutSampling(t *testing.T) {
	rdr := sensor.NewFakeReader(6245)
	rdr.ReadError = errors.New("should not be read in AP mode")
	fx := startLoop(t, wifi.StateAPConfig, &loopFixture{rdr: rdr})

	fx.tickOnce(t)
	fx.tickOnce(t)
	fx.tickOnce(t)
	if err := fx.stop(t); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	snap := fx.tracker.Snapshot()
	if snap.Counts.Samples != 0 || snap.Counts.SampleFailures != 0 {
		t.Errorf("AP mode must not sample: %+v", snap.Counts)
	}
	if len(fx.pub.Payloads) != 0 {
		t.Error("AP mode must not publish")
	}

	// Alternating blue blink at the default brightness, then the shutdown blank.
	frames := fx.strip.Frames
	if len(frames) != 4 {
		t.Fatalf("frames: got %d, want 4", len(frames))
	}
	on := led.Color{B: 128}
	if frames[0] != on || frames[1] != led.Off || frames[2] != on {
		t.Errorf("blink pattern: %+v", frames[:3])
	}
}

func TestBrokerURL(t *testing.T) {
	cfg := config.Default()
	if got := brokerURL(cfg); got != "" {
		t.Errorf("no host: got %q, want empty", got)
	}
	cfg.MQTTHost = "192.168.1.200"
	if got := brokerURL(cfg); got != "tcp://192.168.1.200:1883" {
		t.Errorf("got %q", got)
	}
}
