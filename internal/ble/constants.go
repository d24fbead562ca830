package ble

import (
	"fmt"
	"strings"
)

// LEDState is a constant payload written to the control characteristic.
type LEDState byte

const (
	LEDOff LEDState = 0x00
	LED1   LEDState = 0x01
	LED2   LEDState = 0x02
	LED3   LEDState = 0x03
)

// LEDOn is the "on" payload of the board's single toggle.
const LEDOn = LED1

// Payload returns the bytes written for this state.
func (s LEDState) Payload() []byte {
	return []byte{byte(s)}
}

func (s LEDState) String() string {
	switch s {
	case LEDOff:
		return "NONE"
	case LED1:
		return "LED_1"
	case LED2:
		return "LED_2"
	case LED3:
		return "LED_3"
	}
	return fmt.Sprintf("LED(0x%02X)", byte(s))
}

// ParseLEDState accepts on, off, none, 0-3, led1-led3 and led_1-led_3.
func ParseLEDState(s string) (LEDState, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "off", "none", "0":
		return LEDOff, nil
	case "on", "1", "led1":
		return LED1, nil
	case "2", "led2":
		return LED2, nil
	case "3", "led3":
		return LED3, nil
	}
	return 0, fmt.Errorf("unknown LED state %q (want on, off, 1, 2 or 3)", s)
}
