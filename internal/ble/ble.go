// Package ble hides the host Bluetooth stack behind a small adapter
// interface so the scan and device flows can run against tinygo
// bluetooth, go-ble's raw HCI driver, or a fake in tests.
package ble

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the host refused access to the adapter.
	ErrPermissionDenied = errors.New("bluetooth permission denied")

	// ErrUnsupported means no usable BLE adapter exists on this host.
	ErrUnsupported = errors.New("bluetooth LE is not supported on this device")

	// ErrNotConnected is returned for operations that need a live connection.
	ErrNotConnected = errors.New("not connected")
)

// UnknownName is displayed for peripherals that advertise no local name.
const UnknownName = "Unknown Device"

// Peripheral is one discovered advertiser.
type Peripheral struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	RSSI    int16  `json:"rssi"`
}

// DisplayName returns the advertised name or UnknownName.
func (p Peripheral) DisplayName() string {
	if p.Name == "" {
		return UnknownName
	}
	return p.Name
}

// Characteristic is a single GATT characteristic on a connected peripheral.
type Characteristic interface {
	UUID() string
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
}

// Service is a discovered GATT service with its characteristics, in the
// order the host stack reported them.
type Service struct {
	UUID            string
	Characteristics []Characteristic
}

// Adapter is the host BLE radio.
type Adapter interface {
	// Enable powers up the adapter. Errors are classified with
	// ErrPermissionDenied or ErrUnsupported when possible.
	Enable() error

	// Scan delivers advertisements to onResult until ctx is done.
	Scan(ctx context.Context, onResult func(Peripheral)) error

	// Connect opens a connection; a ctx deadline bounds the attempt.
	Connect(ctx context.Context, address string) (Connection, error)
}

// Connection is an open link to one peripheral.
type Connection interface {
	Address() string
	DiscoverServices() ([]Service, error)
	Disconnect() error
}

// ControlCharacteristic returns the characteristic at the given position,
// or nil when the position does not exist.
func ControlCharacteristic(services []Service, serviceIndex, charIndex int) Characteristic {
	if serviceIndex < 0 || serviceIndex >= len(services) {
		return nil
	}
	chars := services[serviceIndex].Characteristics
	if charIndex < 0 || charIndex >= len(chars) {
		return nil
	}
	return chars[charIndex]
}
