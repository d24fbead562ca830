package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/config"
	"github.com/fr-isen/smartdevice-tool/internal/scan"
)

// Scan runs one scan window and prints the unique peripherals found.
func Scan(ctx context.Context, w io.Writer, adapter ble.Adapter, period time.Duration, asJSON bool) error {
	session := scan.New(adapter,
		scan.WithPeriod(period),
		scan.WithOnFound(func(p ble.Peripheral) {
			config.Debugf("Found %s (%s) at %d dBm", p.DisplayName(), p.Address, p.RSSI)
		}),
	)

	config.Log.Infof("Scanning for BLE devices (%s)...", session.Period())
	found, err := session.Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if found == nil {
			found = []ble.Peripheral{}
		}
		return PrintJSON(w, found)
	}

	if len(found) == 0 {
		fmt.Fprintln(w, "No devices found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d device(s):\n\n", len(found))
	printPeripherals(w, found)
	return nil
}
