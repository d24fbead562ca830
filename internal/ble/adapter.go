package ble

import (
	"fmt"

	"github.com/fr-isen/smartdevice-tool/internal/config"
)

// NewAdapter returns the adapter for the configured backend. The adapter is
// not enabled yet.
func NewAdapter(cfg *config.Config) (Adapter, error) {
	switch cfg.Backend {
	case config.BackendTinyGo, "":
		return NewTinyGoAdapter(cfg.AdapterID), nil
	case config.BackendHCI:
		return NewHCIAdapter(cfg.AdapterID), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
