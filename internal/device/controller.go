// Package device drives one peripheral through connect, service discovery,
// LED writes and disconnect.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/config"
)

// ErrNoControlCharacteristic is returned by SetLED when discovery did not
// yield a characteristic at the control position.
var ErrNoControlCharacteristic = errors.New("LED characteristic not found")

// ErrBusy is returned by Connect while another connect is in flight.
var ErrBusy = errors.New("connection attempt already in progress")

// State is the controller's connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Recorder is told about successful connects and writes.
type Recorder interface {
	RecordConnect(p ble.Peripheral) error
	RecordLED(address string, state ble.LEDState) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithControlPosition sets where the LED characteristic sits in the
// discovered service list.
func WithControlPosition(serviceIndex, charIndex int) Option {
	return func(c *Controller) {
		c.serviceIndex = serviceIndex
		c.charIndex = charIndex
	}
}

// WithConnectTimeout bounds each connect attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRecorder registers a history recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// Controller holds at most one connection to its target.
type Controller struct {
	adapter      ble.Adapter
	target       ble.Peripheral
	serviceIndex int
	charIndex    int
	timeout      time.Duration
	recorder     Recorder

	mu       sync.Mutex
	state    State
	attempt  uint64
	cancel   context.CancelFunc
	conn     ble.Connection
	services []ble.Service
	control  ble.Characteristic
}

// New returns a disconnected controller for target. The control position
// defaults to service 2, characteristic 0.
func New(adapter ble.Adapter, target ble.Peripheral, opts ...Option) *Controller {
	c := &Controller{
		adapter:      adapter,
		target:       target,
		serviceIndex: 2,
		charIndex:    0,
		timeout:      15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the peripheral this controller drives.
func (c *Controller) Target() ble.Peripheral {
	return c.target
}

// ControlPosition returns the configured service and characteristic index.
func (c *Controller) ControlPosition() (int, int) {
	return c.serviceIndex, c.charIndex
}

// Connect opens the connection, enumerates services and resolves the
// control characteristic by position. A missing position is logged, not
// returned: the connection stays up and SetLED reports the miss.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Connected:
		c.mu.Unlock()
		return nil
	case Connecting:
		c.mu.Unlock()
		return ErrBusy
	}
	c.attempt++
	attempt := c.attempt
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	c.state = Connecting
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	log := config.Log.WithField("address", c.target.Address)

	fail := func(err error) error {
		c.mu.Lock()
		if c.attempt == attempt {
			c.state = Disconnected
			c.cancel = nil
		}
		c.mu.Unlock()
		return err
	}

	if err := c.adapter.Enable(); err != nil {
		log.WithError(err).Error("Bluetooth unavailable")
		return fail(err)
	}

	conn, err := c.adapter.Connect(ctx, c.target.Address)
	if err != nil {
		log.WithError(err).Error("Failed to connect")
		return fail(err)
	}

	c.mu.Lock()
	if c.attempt != attempt || c.state != Connecting {
		// Disconnect ran while we were connecting.
		c.mu.Unlock()
		if err := conn.Disconnect(); err != nil {
			log.WithError(err).Warn("Failed to release abandoned connection")
		}
		return ble.ErrNotConnected
	}
	c.conn = conn
	c.state = Connected
	c.cancel = nil
	c.mu.Unlock()

	log.Info("Connected to GATT server. Identifying services...")
	if c.recorder != nil {
		if err := c.recorder.RecordConnect(c.target); err != nil {
			log.WithError(err).Warn("Failed to record connection")
		}
	}

	services, err := conn.DiscoverServices()
	if err != nil {
		log.WithError(err).Error("Service discovery failed")
		return fmt.Errorf("service discovery failed: %w", err)
	}
	control := ble.ControlCharacteristic(services, c.serviceIndex, c.charIndex)

	c.mu.Lock()
	if c.conn == conn {
		c.services = services
		c.control = control
	}
	c.mu.Unlock()

	uuids := make([]string, len(services))
	for i, s := range services {
		uuids[i] = s.UUID
	}
	log.WithField("services", uuids).Info("Services discovered")
	if control == nil {
		log.Warnf("No characteristic at service[%d].characteristic[%d]", c.serviceIndex, c.charIndex)
	} else {
		log.WithField("uuid", control.UUID()).Debug("LED characteristic resolved")
	}
	return nil
}

// SetLED writes the payload for state to the control characteristic.
func (c *Controller) SetLED(state ble.LEDState) error {
	c.mu.Lock()
	conn, control := c.conn, c.control
	c.mu.Unlock()

	log := config.Log.WithField("address", c.target.Address)
	if control == nil {
		log.Error("LED characteristic not found.")
		if conn == nil {
			return fmt.Errorf("%w: %w", ErrNoControlCharacteristic, ble.ErrNotConnected)
		}
		return ErrNoControlCharacteristic
	}

	payload := state.Payload()
	n, err := control.Write(payload)
	if err == nil && n != len(payload) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(payload))
	}
	if err != nil {
		log.WithError(err).Errorf("Failed to write characteristic: %s", control.UUID())
		return fmt.Errorf("failed to write %s: %w", control.UUID(), err)
	}

	log.Infof("LED state set to: %s", state)
	config.Debugf("Characteristic written successfully: %s (% X)", control.UUID(), payload)
	if c.recorder != nil {
		if err := c.recorder.RecordLED(c.target.Address, state); err != nil {
			log.WithError(err).Warn("Failed to record LED state")
		}
	}
	return nil
}

// Disconnect releases the connection unconditionally. It is safe to call
// when never connected and safe to call more than once.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	conn := c.conn
	c.conn = nil
	c.services = nil
	c.control = nil
	c.state = Disconnected
	c.attempt++
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Disconnect(); err != nil {
		config.Log.WithError(err).Warn("Disconnect failed")
		return err
	}
	config.Log.WithField("address", c.target.Address).Info("Disconnected from device.")
	return nil
}

// State returns the connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Services returns the discovered services.
func (c *Controller) Services() []ble.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ble.Service(nil), c.services...)
}

// ControlUUID returns the UUID of the resolved control characteristic.
func (c *Controller) ControlUUID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.control == nil {
		return "", false
	}
	return c.control.UUID(), true
}
