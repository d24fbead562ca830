package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/config"
	"github.com/fr-isen/smartdevice-tool/internal/store"
)

// ListDevices prints the devices remembered by the store.
func ListDevices(w io.Writer, s *store.Store, asJSON bool) error {
	entries, err := s.List()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if asJSON {
		if entries == nil {
			entries = []store.Entry{}
		}
		return PrintJSON(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No known devices.")
		fmt.Fprintln(w, "Devices are remembered after a successful connect.")
		return nil
	}

	fmt.Fprintf(w, "Found %d device(s):\n\n", len(entries))
	for _, e := range entries {
		led := e.LastLED
		if led == "" {
			led = "-"
		}
		fmt.Fprintf(w, "  %s  %-40s  %3dx  %-6s  %s\n",
			column(e.DisplayName(), nameWidth),
			e.Address,
			e.Connections,
			led,
			e.LastConnected.Local().Format(time.DateTime))
	}
	return nil
}

// ForgetDevice removes one device from the store.
func ForgetDevice(w io.Writer, s *store.Store, address string) error {
	if err := s.Forget(address); err != nil {
		return err
	}
	fmt.Fprintf(w, "Forgot %s\n", address)
	return nil
}

// PrintConfig writes the effective configuration as YAML.
func PrintConfig(w io.Writer, cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
