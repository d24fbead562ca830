//go:build !linux

package ble

import (
	"fmt"

	"tinygo.org/x/bluetooth"
)

func newTinyGoRadio(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return nil, fmt.Errorf("selecting adapter %q is only supported on Linux", id)
	}
	return bluetooth.DefaultAdapter, nil
}
