package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
)

// nameWidth is the display width of the name column.
const nameWidth = 20

// PrintJSON pretty-prints v.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printPeripherals prints one aligned row per peripheral.
func printPeripherals(w io.Writer, peripherals []ble.Peripheral) {
	fmt.Fprintf(w, "  %s  %-40s  %s\n", column("NAME", nameWidth), "ADDRESS", "RSSI")
	for _, p := range peripherals {
		fmt.Fprintf(w, "  %s  %-40s  %d dBm\n", column(p.DisplayName(), nameWidth), p.Address, p.RSSI)
	}
}

// column truncates s to width terminal cells and pads it to exactly width.
func column(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
