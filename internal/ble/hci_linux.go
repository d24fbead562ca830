package ble

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fr-isen/smartdevice-tool/internal/config"

	goble "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// HCIAdapter talks to the controller over a raw HCI socket with go-ble,
// bypassing BlueZ. It needs CAP_NET_ADMIN and a controller BlueZ is not
// holding.
type HCIAdapter struct {
	id string

	mu  sync.Mutex
	dev *linux.Device
}

// NewHCIAdapter returns an adapter for "hciN" (or "N"); "" selects hci0.
func NewHCIAdapter(id string) *HCIAdapter {
	return &HCIAdapter{id: id}
}

func hciDeviceID(id string) (int, error) {
	if id == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(id), "hci"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid HCI adapter id %q", id)
	}
	return n, nil
}

// Enable implements Adapter.
func (a *HCIAdapter) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev != nil {
		return nil
	}
	n, err := hciDeviceID(a.id)
	if err != nil {
		return err
	}
	dev, err := linux.NewDevice(goble.OptDeviceID(n))
	if err != nil {
		return ClassifyEnableError(fmt.Errorf("failed to open hci%d: %w", n, err))
	}
	a.dev = dev
	config.Debugf("HCI device hci%d opened", n)
	return nil
}

func (a *HCIAdapter) device() *linux.Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dev
}

// Scan implements Adapter.
func (a *HCIAdapter) Scan(ctx context.Context, onResult func(Peripheral)) error {
	dev := a.device()
	if dev == nil {
		return ErrNotConnected
	}

	config.Debugf("Scanning started...")
	err := dev.Scan(ctx, true, func(adv goble.Advertisement) {
		if ctx.Err() != nil {
			return
		}
		onResult(Peripheral{
			Address: strings.ToUpper(adv.Addr().String()),
			Name:    adv.LocalName(),
			RSSI:    int16(adv.RSSI()),
		})
	})
	config.Debugf("Scanning stopped.")
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// Connect implements Adapter.
func (a *HCIAdapter) Connect(ctx context.Context, address string) (Connection, error) {
	dev := a.device()
	if dev == nil {
		return nil, ErrNotConnected
	}
	address = strings.ToUpper(address)

	client, err := dev.Dial(ctx, goble.NewAddr(strings.ToLower(address)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	config.Debugf("Connected to %s", address)
	return &hciConnection{address: address, client: client}, nil
}

// Close releases the HCI socket.
func (a *HCIAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev == nil {
		return nil
	}
	dev := a.dev
	a.dev = nil
	return dev.Stop()
}

type hciConnection struct {
	address string
	client  goble.Client

	mu     sync.Mutex
	closed bool
}

func (c *hciConnection) Address() string {
	return c.address
}

func (c *hciConnection) DiscoverServices() ([]Service, error) {
	config.Debugf("Discovering services...")

	profile, err := c.client.DiscoverProfile(true)
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}

	services := make([]Service, 0, len(profile.Services))
	for _, svc := range profile.Services {
		s := Service{UUID: svc.UUID.String()}
		for _, char := range svc.Characteristics {
			s.Characteristics = append(s.Characteristics, &hciCharacteristic{client: c.client, char: char})
		}
		services = append(services, s)
	}
	return services, nil
}

func (c *hciConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.CancelConnection()
}

type hciCharacteristic struct {
	client goble.Client
	char   *goble.Characteristic
}

func (c *hciCharacteristic) UUID() string {
	return c.char.UUID.String()
}

func (c *hciCharacteristic) Write(p []byte) (int, error) {
	noRsp := c.char.Property&goble.CharWrite == 0
	if err := c.client.WriteCharacteristic(c.char, p, noRsp); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *hciCharacteristic) Read(p []byte) (int, error) {
	if c.char.Property&goble.CharRead == 0 {
		return 0, errors.New("characteristic is not readable")
	}
	value, err := c.client.ReadCharacteristic(c.char)
	if err != nil {
		return 0, err
	}
	return copy(p, value), nil
}
