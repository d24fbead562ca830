package ble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHCIDeviceID(t *testing.T) {
	for in, want := range map[string]int{"": 0, "hci0": 0, "hci1": 1, "HCI2": 2, "3": 3} {
		got, err := hciDeviceID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := hciDeviceID("usb0")
	assert.Error(t, err)
	_, err = hciDeviceID("hci-1")
	assert.Error(t, err)
}
