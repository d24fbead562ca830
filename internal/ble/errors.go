package ble

import (
	"errors"
	"fmt"
	"strings"
)

// ClassifyEnableError wraps an adapter enable failure with
// ErrPermissionDenied or ErrUnsupported when the message identifies one.
func ClassifyEnableError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnsupported) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "accessdenied"),
		strings.Contains(msg, "access denied"),
		strings.Contains(msg, "not authorized"),
		strings.Contains(msg, "notpermitted"),
		strings.Contains(msg, "operation not permitted"),
		strings.Contains(msg, "unauthorized"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "org.bluez was not provided"),
		strings.Contains(msg, "dbus") && strings.HasSuffix(msg, "no such file or directory"),
		strings.Contains(msg, "no such adapter"),
		strings.Contains(msg, "no default controller"),
		strings.Contains(msg, "not supported"),
		strings.Contains(msg, "unsupported"):
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return err
}

// HelpMessage returns a user-facing hint for a classified enable error.
func HelpMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Permissions denied, Bluetooth scanning won't work.\n" +
			"On Linux, run as a user allowed to talk to org.bluez over D-Bus (or grant CAP_NET_ADMIN for the hci backend).\n" +
			"On macOS, allow Bluetooth access for your terminal in System Settings > Privacy & Security."
	case errors.Is(err, ErrUnsupported):
		return "Bluetooth LE is not supported on this device.\n" +
			"Make sure bluez and dbus are installed and running and that an adapter is present.\n" +
			"If running in a container, make sure it has access to the host's D-Bus socket (e.g. -v /var/run/dbus:/var/run/dbus)."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
