// Command soil-sensor samples a soil-moisture probe, drives the status LED,
// serves the configuration portal, and publishes readings to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/soil-sensor/internal/calib"
	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/identity"
	"github.com/sweeney/soil-sensor/internal/led"
	"github.com/sweeney/soil-sensor/internal/mqtt"
	"github.com/sweeney/soil-sensor/internal/portal"
	"github.com/sweeney/soil-sensor/internal/sensor"
	"github.com/sweeney/soil-sensor/internal/status"
	"github.com/sweeney/soil-sensor/internal/wifi"
)

// errRebootRequested is returned by the run loop when a queued reboot (portal
// save or MQTT command) takes effect.
var errRebootRequested = errors.New("reboot requested")

// rebootExitCode tells the service manager to restart the unit, which is the
// daemon's equivalent of a device reset.
const rebootExitCode = 10

func main() {
	poll := flag.Duration("poll", 5*time.Second, "Sensor sampling interval")
	configPath := flag.String("config", "/var/lib/soil-sensor/config.json", "Path to the persisted configuration")
	httpAddr := flag.String("http", ":80", "HTTP portal address (empty to disable)")
	wifiDev := flag.String("wifi-dev", "wlan0", "Wireless interface name")
	touchPin := flag.Int("touch-pin", sensor.DefaultTouchPin, "BCM pin number for the touch-style probe")
	printReading := flag.Bool("print-reading", false, "Print one reading and exit")

	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	err := run(*poll, *configPath, *httpAddr, *wifiDev, *touchPin, *printReading, log)
	if errors.Is(err, errRebootRequested) {
		log.Info().Msg("rebooting")
		os.Exit(rebootExitCode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(poll time.Duration, configPath, httpAddr, wifiDev string, touchPin int, printReading bool, log zerolog.Logger) error {
	// Load settings; missing or corrupt settings fall back to defaults and
	// force configuration-portal mode.
	store, loadErr := config.Open(configPath, log)
	if loadErr != nil && !errors.Is(loadErr, config.ErrMissingConfig) && !errors.Is(loadErr, config.ErrCorruptConfig) {
		return fmt.Errorf("open config: %w", loadErr)
	}
	configUsable := loadErr == nil
	cfg := store.Current()

	// Device identity, derived once and persisted.
	if !identity.Valid(cfg.DeviceID) {
		id := identity.Derive()
		if err := store.SetDeviceID(id); err != nil {
			// Not fatal: topics stay stable for this boot either way.
			log.Warn().Err(err).Str("device_id", id).Msg("could not persist device id")
		}
		cfg = store.Current()
		if cfg.DeviceID == "" {
			cfg.DeviceID = id
		}
	}
	deviceID := cfg.DeviceID

	// Moisture probe, resolved once at boot from the configured type.
	rdr := openReader(cfg.SensorType, touchPin, log)
	if rdr != nil {
		defer rdr.Close()
	}

	// Print mode
	if printReading {
		if rdr == nil {
			return errors.New("sensor unavailable")
		}
		raw, err := rdr.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		pct, err := calib.Percent(raw, cfg.DryReading, cfg.WetReading)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		fmt.Printf("raw=%d moisture=%d%%\n", raw, pct)
		return nil
	}

	var climate sensor.Climate
	if cfg.DHTEnabled {
		c, err := sensor.NewBME280()
		if err != nil {
			log.Warn().Err(err).Msg("climate sensor unavailable")
		} else {
			climate = c
			defer c.Close()
		}
	}

	var strip led.Strip
	if np, err := led.NewNeoPixel(); err != nil {
		log.Warn().Err(err).Msg("status led unavailable")
	} else {
		strip = np
		defer np.Close()
	}

	// Connectivity decision: station mode or the configuration portal AP.
	mgr, err := wifi.NewNMCLIManager(wifiDev)
	if err != nil {
		return fmt.Errorf("init wifi: %w", err)
	}
	sup := wifi.NewSupervisor(mgr, log)
	state := sup.Start(cfg.WifiSSID, cfg.WifiPassword, configUsable)

	tracker := status.NewTracker(time.Now(), deviceID, status.Config{
		PollMs:     poll.Milliseconds(),
		Broker:     brokerURL(cfg),
		HTTPAddr:   httpAddr,
		DryReading: cfg.DryReading,
		WetReading: cfg.WetReading,
		SensorType: string(cfg.SensorType),
		TempUnit:   string(cfg.TempUnit),
		Brightness: cfg.Brightness,
	})
	tracker.SetConnectivity(state)

	// Reboot requests are queued and honored at the top of the next cycle,
	// never mid-cycle, so a save can finish persisting first.
	rebootCh := make(chan struct{}, 1)
	requestReboot := func() {
		select {
		case rebootCh <- struct{}{}:
		default:
		}
	}

	if httpAddr != "" {
		srv := portal.New(httpAddr, tracker, store, state == wifi.StateAPConfig, requestReboot, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", httpAddr).Msg("portal listening")
	}

	// Telemetry only runs in station mode with a configured broker.
	var pub mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	var cmds <-chan string
	if state == wifi.StateStation && cfg.MQTTHost != "" {
		client, err := mqtt.NewRealClient(mqtt.Options{
			Broker:   brokerURL(cfg),
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			DeviceID: deviceID,
			Log:      log,
		})
		if err != nil {
			// Best-effort: the device keeps sampling and displaying.
			log.Warn().Err(err).Msg("mqtt unavailable")
		} else {
			pub = client
			mqttStatus = client
			cmds = client.Commands()
			defer client.Close()
		}
	}

	log.Info().
		Dur("poll", poll).
		Str("state", string(state)).
		Str("device_id", deviceID).
		Msg("started")

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(rdr, climate, strip, pub, mqttStatus, store, tracker, state, ticker.C, sigCh, cmds, rebootCh, log)
}

// runLoop is the control loop: per tick, strictly sample → indicate →
// publish. Portal saves and MQTT commands land between cycles. The
// configuration is re-read from the store every tick, so calibration,
// brightness, and unit changes apply without a reboot; network-level changes
// take the reboot the portal triggers anyway.
func runLoop(rdr sensor.Reader, climate sensor.Climate, strip led.Strip, pub mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, store *config.Store, tracker *status.Tracker, state wifi.State, tick <-chan time.Time, sig <-chan os.Signal, cmds <-chan string, rebootCh <-chan struct{}, log zerolog.Logger) error {
	var (
		counts        status.CycleCounts
		cycle         uint64
		blinkPhase    bool
		last          sensor.Reading
		haveReading   bool
		rebootPending bool
	)

	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			if strip != nil {
				if err := strip.Write(led.Off); err != nil {
					log.Warn().Err(err).Msg("led blank failed")
				}
			}
			return nil

		case t := <-tick:
			// Queued requests are serviced between cycles.
			select {
			case <-rebootCh:
				rebootPending = true
			default:
			}
			select {
			case cmd := <-cmds:
				if cmd == mqtt.CommandReboot {
					log.Info().Msg("reboot command received")
					rebootPending = true
				}
			default:
			}
			if rebootPending {
				return errRebootRequested
			}

			cfg := store.Current()
			blinkPhase = !blinkPhase

			if state == wifi.StateAPConfig {
				// Unconfigured: nothing to sample, just blink.
				writeFrame(strip, led.Indicate(0, state, cfg.Brightness, blinkPhase), log)
				continue
			}

			// 1. Sample
			fresh := false
			counts.Samples++
			raw, err := readRaw(rdr)
			if err != nil {
				counts.SampleFailures++
				tracker.MarkStale()
				log.Warn().Err(err).Msg("sensor read failed, reusing previous reading")
			} else {
				pct, cerr := calib.Percent(raw, cfg.DryReading, cfg.WetReading)
				if cerr != nil {
					// Validation keeps this out of persisted configs; if it
					// shows up anyway the reading is unusable.
					counts.SampleFailures++
					tracker.MarkStale()
					log.Error().Err(cerr).Int("dry", cfg.DryReading).Int("wet", cfg.WetReading).Msg("calibration undefined")
				} else {
					cycle++
					r := sensor.Reading{Raw: raw, MoisturePct: pct, Cycle: cycle, Time: t}
					if climate != nil {
						tempC, hum, err := climate.Sense()
						if err != nil {
							log.Warn().Err(err).Msg("climate read failed")
						} else {
							r.Temperature = &tempC
							r.Humidity = &hum
						}
					}
					last = r
					haveReading = true
					fresh = true
					tracker.SetReading(r)
				}
			}

			// 2. Indicate
			if haveReading {
				writeFrame(strip, led.Indicate(last.MoisturePct, state, cfg.Brightness, blinkPhase), log)
			} else {
				writeFrame(strip, led.Off, log)
			}

			// 3. Publish, best-effort. Stale readings are not re-sent.
			if fresh && pub != nil {
				if err := pub.Publish(last, cfg.TempUnit); err != nil {
					counts.PublishFailures++
					log.Warn().Err(err).Msg("publish failed")
				} else {
					counts.Publishes++
				}
			}

			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			tracker.SetCounts(counts)
		}
	}
}

func readRaw(rdr sensor.Reader) (int, error) {
	if rdr == nil {
		return 0, errors.New("sensor unavailable")
	}
	return rdr.Read()
}

func writeFrame(strip led.Strip, c led.Color, log zerolog.Logger) {
	if strip == nil {
		return
	}
	if err := strip.Write(c); err != nil {
		log.Warn().Err(err).Msg("led write failed")
	}
}

// openReader builds the moisture reader for the configured sensor variant.
// A missing probe is not fatal: the device still serves the portal so the
// operator can fix the configuration.
func openReader(st config.SensorType, touchPin int, log zerolog.Logger) sensor.Reader {
	switch st {
	case config.SensorInternalTouch:
		r, err := sensor.NewTouchReader(touchPin)
		if err != nil {
			log.Error().Err(err).Msg("touch sensor init failed, sensor reading disabled")
			return nil
		}
		return r
	default:
		r, err := sensor.NewADCReader()
		if err != nil {
			log.Error().Err(err).Msg("adc init failed, sensor reading disabled")
			return nil
		}
		return r
	}
}

func brokerURL(cfg config.Configuration) string {
	if cfg.MQTTHost == "" {
		return ""
	}
	return fmt.Sprintf("tcp://%s:%d", cfg.MQTTHost, cfg.MQTTPort)
}
