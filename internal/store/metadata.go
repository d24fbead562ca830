package store

import (
	"strings"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
)

// maxEvents bounds the per-device history kept in the index.
const maxEvents = 20

// Entry is everything remembered about one peripheral.
type Entry struct {
	Address       string    `json:"address"`
	Name          string    `json:"name,omitempty"`
	RSSI          int16     `json:"rssi,omitempty"`
	Connections   int       `json:"connections"`
	LastLED       string    `json:"last_led,omitempty"`
	Events        []Event   `json:"events,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastConnected time.Time `json:"last_connected"`
}

// Event records one interaction with a device.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"` // "connect", "led"
	Value     string    `json:"value,omitempty"`
}

// Peripheral returns the entry as a connectable peripheral.
func (e Entry) Peripheral() ble.Peripheral {
	return ble.Peripheral{Address: e.Address, Name: e.Name, RSSI: e.RSSI}
}

// DisplayName returns the remembered name or ble.UnknownName.
func (e Entry) DisplayName() string {
	return e.Peripheral().DisplayName()
}

func (e *Entry) addEvent(ev Event) {
	e.Events = append(e.Events, ev)
	if len(e.Events) > maxEvents {
		e.Events = e.Events[len(e.Events)-maxEvents:]
	}
}

// normalizeAddress upper-cases and trims an address so lookups match the
// form the scanners report.
func normalizeAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}
