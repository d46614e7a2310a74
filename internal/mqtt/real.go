package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/sensor"
)

// bufferCapacity bounds how many telemetry messages are held while the
// broker is unreachable. Readings age quickly; a few minutes at the default
// cadence is plenty.
const bufferCapacity = 64

// commandQueueCapacity bounds pending commands between loop ticks.
const commandQueueCapacity = 4

// RealClient publishes to an actual MQTT broker and subscribes to the
// device's command topic.
type RealClient struct {
	client    paho.Client
	deviceID  string
	dataTopic string
	cmdTopic  string
	log       zerolog.Logger

	commands chan string

	mu     sync.Mutex
	buffer *ringBuffer
}

// Options configures the real client.
type Options struct {
	Broker   string // e.g. tcp://192.168.1.200:1883
	Username string
	Password string
	DeviceID string
	Log      zerolog.Logger
}

// NewRealClient connects to the broker, retrying with exponential backoff,
// and subscribes to the command topic. The paho session auto-reconnects
// afterwards; buffered telemetry is replayed on each reconnect.
func NewRealClient(o Options) (*RealClient, error) {
	c := &RealClient{
		deviceID:  o.DeviceID,
		dataTopic: DataTopic(o.DeviceID),
		cmdTopic:  CmdTopic(o.DeviceID),
		log:       o.Log,
		commands:  make(chan string, commandQueueCapacity),
		buffer:    newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID("soil-sensor-" + o.DeviceID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	c.client = paho.NewClient(opts)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		token := c.client.Connect()
		if !token.WaitTimeout(10 * time.Second) {
			return fmt.Errorf("connection timeout")
		}
		return token.Error()
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on the initial connect and every reconnect: restore the
// command subscription and replay anything buffered while offline.
func (c *RealClient) onConnect(client paho.Client) {
	token := client.Subscribe(c.cmdTopic, 1, c.onCommand)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		c.log.Warn().Err(token.Error()).Str("topic", c.cmdTopic).Msg("command subscribe failed")
	}

	c.mu.Lock()
	msgs := c.buffer.drainAll()
	c.mu.Unlock()
	for _, m := range msgs {
		client.Publish(m.topic, 0, false, m.payload)
	}
	if len(msgs) > 0 {
		c.log.Info().Int("count", len(msgs)).Msg("replayed buffered telemetry")
	}
}

// onCommand queues a recognized command for the control loop. Unrecognized
// commands are ignored, not fatal.
func (c *RealClient) onCommand(_ paho.Client, msg paho.Message) {
	cmd := strings.TrimSpace(string(msg.Payload()))
	if cmd != CommandReboot {
		c.log.Info().Str("cmd", cmd).Msg("ignoring unrecognized command")
		return
	}
	select {
	case c.commands <- cmd:
	default:
		// Queue full: the loop already has a pending reboot.
	}
}

// Commands returns the channel of recognized command strings. The control
// loop drains it with a non-blocking select.
func (c *RealClient) Commands() <-chan string {
	return c.commands
}

// Publish sends a reading to the data topic. When the broker is unreachable
// the payload is buffered for replay and an error is returned so the caller
// can count the failure.
func (c *RealClient) Publish(reading sensor.Reading, unit config.TempUnit) error {
	payload, err := FormatPayload(reading, c.deviceID, unit)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	if !c.client.IsConnected() {
		c.bufferMsg(payload)
		return fmt.Errorf("broker unreachable, buffered reading")
	}

	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(c.dataTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		c.bufferMsg(payload)
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		c.bufferMsg(payload)
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (c *RealClient) bufferMsg(payload []byte) {
	c.mu.Lock()
	dropped := c.buffer.push(bufferedMsg{topic: c.dataTopic, payload: payload})
	n := c.buffer.len()
	c.mu.Unlock()
	if dropped {
		c.log.Warn().Int("buffered", n).Msg("telemetry buffer full, dropped oldest")
	}
}

// IsConnected reports whether the broker session is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
