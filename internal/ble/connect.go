package ble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/config"

	"tinygo.org/x/bluetooth"
)

// TinyGoAdapter drives the host stack through tinygo bluetooth
// (BlueZ over D-Bus, CoreBluetooth, WinRT).
type TinyGoAdapter struct {
	id string

	mu      sync.Mutex
	radio   *bluetooth.Adapter
	enabled bool
	seen    map[string]bluetooth.Address // upper-case address -> stack address
}

// NewTinyGoAdapter returns an adapter for the given host adapter ID
// ("" selects the default one).
func NewTinyGoAdapter(id string) *TinyGoAdapter {
	return &TinyGoAdapter{
		id:   id,
		seen: make(map[string]bluetooth.Address),
	}
}

// Enable implements Adapter.
func (a *TinyGoAdapter) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled {
		return nil
	}
	radio, err := newTinyGoRadio(a.id)
	if err != nil {
		return ClassifyEnableError(err)
	}
	if err := radio.Enable(); err != nil {
		return ClassifyEnableError(fmt.Errorf("failed to enable bluetooth: %w", err))
	}
	a.radio = radio
	a.enabled = true
	config.Debugf("Bluetooth adapter enabled (id=%q)", a.id)
	return nil
}

func (a *TinyGoAdapter) stopScan() {
	if err := a.radio.StopScan(); err != nil {
		if strings.Contains(err.Error(), "no scan in progress") {
			return
		}
		config.Log.Warnf("ble: failed to stop scan: %v", err)
	}
}

// Scan implements Adapter. It returns nil when ctx ends the scan.
func (a *TinyGoAdapter) Scan(ctx context.Context, onResult func(Peripheral)) error {
	if !a.isEnabled() {
		return ErrNotConnected
	}
	if ctx.Err() != nil {
		return nil
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.stopScan()
		case <-done:
		}
	}()

	config.Debugf("Scanning started...")
	err := a.radio.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		// The stack may deliver results after StopScan raced with Scan.
		if ctx.Err() != nil {
			a.stopScan()
			return
		}
		address := strings.ToUpper(result.Address.String())
		a.mu.Lock()
		a.seen[address] = result.Address
		a.mu.Unlock()

		onResult(Peripheral{
			Address: address,
			Name:    result.LocalName(),
			RSSI:    result.RSSI,
		})
	})
	config.Debugf("Scanning stopped.")
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// Connect implements Adapter. Addresses not seen by an earlier scan are
// looked up with a scan bounded by ctx.
func (a *TinyGoAdapter) Connect(ctx context.Context, address string) (Connection, error) {
	if !a.isEnabled() {
		return nil, ErrNotConnected
	}
	address = strings.ToUpper(address)

	a.mu.Lock()
	addr, ok := a.seen[address]
	a.mu.Unlock()
	if !ok {
		var err error
		addr, err = a.find(ctx, address)
		if err != nil {
			return nil, err
		}
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = bluetooth.NewDuration(time.Until(deadline))
	}

	// tinygo bluetooth has no context support, so connect in the
	// background and drop the device if ctx ends first.
	deviceCh := make(chan bluetooth.Device, 1)
	errorCh := make(chan error, 1)
	go func() {
		device, err := a.radio.Connect(addr, params)
		if err != nil {
			errorCh <- err
			return
		}
		if ctx.Err() == nil {
			deviceCh <- device
			return
		}
		if err := device.Disconnect(); err != nil {
			config.Log.Warnf("ble: failed to disconnect: %v", err)
		}
	}()

	select {
	case device := <-deviceCh:
		config.Debugf("Connected to %s", address)
		return &tinyGoConnection{address: address, device: device}, nil
	case err := <-errorCh:
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *TinyGoAdapter) find(ctx context.Context, address string) (bluetooth.Address, error) {
	config.Debugf("Address %s not seen yet, scanning for it...", address)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := false
	err := a.Scan(scanCtx, func(p Peripheral) {
		if p.Address == address {
			found = true
			cancel()
		}
	})
	if err != nil {
		return bluetooth.Address{}, err
	}
	if !found {
		if ctx.Err() != nil {
			return bluetooth.Address{}, fmt.Errorf("device %s not found: %w", address, ctx.Err())
		}
		return bluetooth.Address{}, fmt.Errorf("device %s not found", address)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen[address], nil
}

func (a *TinyGoAdapter) isEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

type tinyGoConnection struct {
	address string
	device  bluetooth.Device

	mu     sync.Mutex
	closed bool
}

func (c *tinyGoConnection) Address() string {
	return c.address
}

func (c *tinyGoConnection) DiscoverServices() ([]Service, error) {
	config.Debugf("Discovering services...")

	stackServices, err := c.device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}

	services := make([]Service, 0, len(stackServices))
	for _, svc := range stackServices {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to discover characteristics of %s: %w", svc.UUID().String(), err)
		}
		s := Service{UUID: svc.UUID().String()}
		for _, char := range chars {
			s.Characteristics = append(s.Characteristics, tinyGoCharacteristic{char: char})
		}
		services = append(services, s)
	}
	return services, nil
}

func (c *tinyGoConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.device.Disconnect()
}

type tinyGoCharacteristic struct {
	char bluetooth.DeviceCharacteristic
}

func (c tinyGoCharacteristic) UUID() string {
	return c.char.UUID().String()
}

// Write uses write-without-response: tinygo bluetooth on Linux does not
// offer write requests.
func (c tinyGoCharacteristic) Write(p []byte) (int, error) {
	return c.char.WriteWithoutResponse(p)
}

func (c tinyGoCharacteristic) Read(p []byte) (int, error) {
	return c.char.Read(p)
}
