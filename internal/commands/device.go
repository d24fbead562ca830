package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/device"
	"github.com/fr-isen/smartdevice-tool/internal/util"
)

// Explore lists all services and characteristics with their positions and
// marks the one used for LED control. Readable values are printed; nothing
// is written.
func Explore(ctx context.Context, w io.Writer, ctrl *device.Controller) error {
	fmt.Fprintf(w, "Connecting to %s...\n", ctrl.Target().Address)
	if err := ctrl.Connect(ctx); err != nil {
		_ = ctrl.Disconnect()
		return err
	}
	defer ctrl.Disconnect()

	services := ctrl.Services()
	svcIdx, charIdx := ctrl.ControlPosition()
	fmt.Fprintf(w, "\nFound %d services:\n\n", len(services))

	for i, svc := range services {
		fmt.Fprintf(w, "Service [%d]: %s\n", i, svc.UUID)
		if len(svc.Characteristics) == 0 {
			fmt.Fprintln(w, "  (no characteristics)")
		}
		for j, char := range svc.Characteristics {
			marker := ""
			if i == svcIdx && j == charIdx {
				marker = "  <- LED control"
			}
			fmt.Fprintf(w, "  [%d] %s%s\n", j, char.UUID(), marker)

			buf := make([]byte, 256)
			n, err := char.Read(buf)
			if err != nil || n == 0 {
				continue
			}
			data := buf[:n]
			if n <= 16 || util.IsTextData(data) {
				fmt.Fprintf(w, "      Value: %s\n", util.FormatValue(data))
				continue
			}
			fmt.Fprintf(w, "      Value (%d bytes):\n", n)
			for _, line := range strings.Split(strings.TrimSuffix(util.HexDump(data), "\n"), "\n") {
				fmt.Fprintf(w, "        %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}

	if _, ok := ctrl.ControlUUID(); !ok {
		fmt.Fprintf(w, "No characteristic at service [%d] characteristic [%d]; LED writes will fail.\n", svcIdx, charIdx)
	}
	return nil
}

// Led connects, writes state to the control characteristic and disconnects.
func Led(ctx context.Context, w io.Writer, ctrl *device.Controller, state ble.LEDState) error {
	if err := ctrl.Connect(ctx); err != nil {
		_ = ctrl.Disconnect()
		return err
	}
	defer ctrl.Disconnect()

	if err := ctrl.SetLED(state); err != nil {
		return err
	}
	fmt.Fprintf(w, "LED state set to: %s\n", state)
	return nil
}
