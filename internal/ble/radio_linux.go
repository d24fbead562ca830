package ble

import "tinygo.org/x/bluetooth"

func newTinyGoRadio(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return bluetooth.NewAdapter(id), nil
	}
	return bluetooth.DefaultAdapter, nil
}
