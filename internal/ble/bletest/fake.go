// Package bletest provides an in-memory ble.Adapter for tests.
package bletest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
)

// Adapter is a scriptable ble.Adapter.
type Adapter struct {
	mu sync.Mutex

	EnableErr  error
	ScanErr    error
	enableCall int
	scanCall   int

	peripherals []ble.Peripheral
	devices     map[string]*Device
	conns       []*Connection

	handler  func(ble.Peripheral)
	scanCtx  context.Context
	started  chan struct{}
	finished chan struct{}
}

// NewAdapter returns an empty fake adapter.
func NewAdapter() *Adapter {
	return &Adapter{
		devices:  make(map[string]*Device),
		started:  make(chan struct{}, 16),
		finished: make(chan struct{}, 16),
	}
}

// AddPeripheral queues an advertisement delivered at the start of every scan.
func (a *Adapter) AddPeripheral(p ble.Peripheral) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.peripherals = append(a.peripherals, p)
}

// AddDevice registers a connectable device.
func (a *Adapter) AddDevice(d *Device) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.devices[strings.ToUpper(d.Address)] = d
}

// Enable implements ble.Adapter.
func (a *Adapter) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enableCall++
	return a.EnableErr
}

// Scan implements ble.Adapter. Queued peripherals are delivered first, then
// the call blocks until ctx is done.
func (a *Adapter) Scan(ctx context.Context, onResult func(ble.Peripheral)) error {
	a.mu.Lock()
	a.scanCall++
	if a.ScanErr != nil {
		err := a.ScanErr
		a.mu.Unlock()
		a.finished <- struct{}{}
		return err
	}
	a.handler = onResult
	a.scanCtx = ctx
	queued := append([]ble.Peripheral(nil), a.peripherals...)
	a.mu.Unlock()

	for _, p := range queued {
		onResult(p)
	}
	a.started <- struct{}{}

	<-ctx.Done()
	a.finished <- struct{}{}
	return nil
}

// Started is signalled once per scan after queued peripherals are delivered.
func (a *Adapter) Started() <-chan struct{} {
	return a.started
}

// Finished is signalled once per scan when Scan returns.
func (a *Adapter) Finished() <-chan struct{} {
	return a.finished
}

// Advertise delivers p to the running scan. It reports false when no scan
// is running.
func (a *Adapter) Advertise(p ble.Peripheral) bool {
	a.mu.Lock()
	h, ctx := a.handler, a.scanCtx
	a.mu.Unlock()
	if h == nil || ctx == nil || ctx.Err() != nil {
		return false
	}
	h(p)
	return true
}

// AdvertiseLate delivers p to the most recent scan handler even after that
// scan was stopped, the way a host stack can flush one last result.
func (a *Adapter) AdvertiseLate(p ble.Peripheral) {
	a.mu.Lock()
	h := a.handler
	a.mu.Unlock()
	if h != nil {
		h(p)
	}
}

// EnableCalls returns how many times Enable ran.
func (a *Adapter) EnableCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enableCall
}

// ScanCalls returns how many times Scan ran.
func (a *Adapter) ScanCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scanCall
}

// Connections returns every connection handed out so far.
func (a *Adapter) Connections() []*Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Connection(nil), a.conns...)
}

// Connect implements ble.Adapter.
func (a *Adapter) Connect(ctx context.Context, address string) (ble.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	d, ok := a.devices[strings.ToUpper(address)]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device %s not found", address)
	}
	if d.ConnectErr != nil {
		return nil, d.ConnectErr
	}
	if d.Gate != nil {
		if d.Dialing != nil {
			d.Dialing <- struct{}{}
		}
		<-d.Gate
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	c := &Connection{device: d}
	a.conns = append(a.conns, c)
	return c, nil
}

// Device is a connectable fake peripheral.
type Device struct {
	Address     string
	Services    []ble.Service
	ConnectErr  error
	DiscoverErr error

	// Gate, when set, holds Connect until it is closed. The link is
	// handed out even if ctx ended meanwhile.
	Gate chan struct{}
	// Dialing is signalled when Connect starts waiting on Gate.
	Dialing chan struct{}
}

// Connection is a fake open link.
type Connection struct {
	device *Device

	mu          sync.Mutex
	disconnects int
}

func (c *Connection) Address() string {
	return strings.ToUpper(c.device.Address)
}

func (c *Connection) DiscoverServices() ([]ble.Service, error) {
	if c.device.DiscoverErr != nil {
		return nil, c.device.DiscoverErr
	}
	return c.device.Services, nil
}

func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

// Disconnects returns how many times Disconnect ran.
func (c *Connection) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// Characteristic records writes and serves a fixed value on read.
type Characteristic struct {
	ID       string
	Value    []byte
	WriteErr error

	mu     sync.Mutex
	writes [][]byte
}

// NewCharacteristic returns a writable characteristic with the given UUID.
func NewCharacteristic(uuid string) *Characteristic {
	return &Characteristic{ID: uuid}
}

func (c *Characteristic) UUID() string {
	return c.ID
}

func (c *Characteristic) Write(p []byte) (int, error) {
	if c.WriteErr != nil {
		return 0, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *Characteristic) Read(p []byte) (int, error) {
	if c.Value == nil {
		return 0, fmt.Errorf("characteristic %s is not readable", c.ID)
	}
	return copy(p, c.Value), nil
}

// Writes returns a copy of every payload written so far.
func (c *Characteristic) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

// Services builds n services, each holding the given characteristics.
// Handy for putting the control characteristic at a given position.
func Services(uuids []string, chars ...[]ble.Characteristic) []ble.Service {
	out := make([]ble.Service, len(uuids))
	for i, u := range uuids {
		out[i].UUID = u
		if i < len(chars) {
			out[i].Characteristics = chars[i]
		}
	}
	return out
}
