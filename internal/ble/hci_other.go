//go:build !linux

package ble

import "context"

// HCIAdapter is only available on Linux.
type HCIAdapter struct{}

// NewHCIAdapter returns an adapter whose Enable always fails with
// ErrUnsupported.
func NewHCIAdapter(string) *HCIAdapter {
	return &HCIAdapter{}
}

func (a *HCIAdapter) Enable() error {
	return ErrUnsupported
}

func (a *HCIAdapter) Scan(context.Context, func(Peripheral)) error {
	return ErrUnsupported
}

func (a *HCIAdapter) Connect(context.Context, string) (Connection, error) {
	return nil, ErrUnsupported
}

func (a *HCIAdapter) Close() error {
	return nil
}
