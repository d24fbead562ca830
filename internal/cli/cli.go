package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/commands"
	"github.com/fr-isen/smartdevice-tool/internal/config"
	"github.com/fr-isen/smartdevice-tool/internal/device"
	"github.com/fr-isen/smartdevice-tool/internal/store"
	"github.com/fr-isen/smartdevice-tool/internal/tui"
)

// CLI is the root command structure for smartdevice.
type CLI struct {
	Verbose    bool   `short:"v" help:"Enable verbose debug output"`
	ConfigFile string `name:"config" help:"Config file (default ~/.smartdevice/config.yaml)" type:"path" placeholder:"PATH"`
	Backend    string `help:"Bluetooth backend: tinygo or hci" placeholder:"NAME"`
	Adapter    string `help:"Host adapter ID (e.g. hci0)" placeholder:"ID"`

	// Default command - TUI
	Tui TuiCmd `cmd:"" default:"withargs" help:"Launch interactive TUI (default)"`

	Scan       ScanCmd    `cmd:"" help:"Scan for BLE devices and print them"`
	Explore    ExploreCmd `cmd:"" help:"List all services and characteristics of a device"`
	Led        LedCmd     `cmd:"" help:"Set the LED state of a device"`
	Devices    DevicesCmd `cmd:"" help:"Known devices"`
	ShowConfig ConfigCmd  `cmd:"" name:"config" help:"Print the effective configuration"`
}

// load reads the config file, then env overrides, then global flags.
func (c *CLI) load() (*config.Config, error) {
	config.Verbose = c.Verbose

	path := c.ConfigFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.Backend != "" {
		cfg.Backend = c.Backend
	}
	if c.Adapter != "" {
		cfg.AdapterID = c.Adapter
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config and configures logging. The returned closer
// releases the log file.
func (c *CLI) setup(toFile bool) (*config.Config, io.Closer, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, nil, err
	}
	closer, err := config.SetupLogging(cfg, toFile)
	if err != nil {
		return nil, nil, err
	}
	config.Debugf("Using config: backend=%s adapter=%q store=%s", cfg.Backend, cfg.AdapterID, cfg.StorePath)
	return cfg, closer, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openAdapter builds the configured adapter and turns enable failures into
// user-facing messages.
func openAdapter(cfg *config.Config) (ble.Adapter, error) {
	adapter, err := ble.NewAdapter(cfg)
	if err != nil {
		return nil, err
	}
	if err := adapter.Enable(); err != nil {
		return nil, userError(err)
	}
	return adapter, nil
}

func closeAdapter(adapter ble.Adapter) {
	if c, ok := adapter.(io.Closer); ok {
		if err := c.Close(); err != nil {
			config.Log.WithError(err).Debug("Failed to close adapter")
		}
	}
}

func userError(err error) error {
	if errors.Is(err, ble.ErrPermissionDenied) || errors.Is(err, ble.ErrUnsupported) {
		return fmt.Errorf("%w\n\n%s", err, ble.HelpMessage(err))
	}
	return err
}

// newController builds a controller for address, recording history in st
// when it is available. A name remembered by the store is reused.
func newController(cfg *config.Config, adapter ble.Adapter, st *store.Store, address string) *device.Controller {
	target := ble.Peripheral{Address: address}
	opts := []device.Option{
		device.WithControlPosition(cfg.Control.ServiceIndex, cfg.Control.CharacteristicIndex),
		device.WithConnectTimeout(cfg.ConnectTimeout.Std()),
	}
	if st != nil {
		if e, err := st.Get(address); err == nil {
			target = e.Peripheral()
		}
		opts = append(opts, device.WithRecorder(st))
	}
	return device.New(adapter, target, opts...)
}

// openStore opens the device store. Failures are logged and yield nil so
// device commands still work without history.
func openStore(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		config.Log.WithError(err).Warn("Device store unavailable")
		return nil
	}
	return st
}

// --- TUI Command ---

type TuiCmd struct{}

func (c *TuiCmd) Run(globals *CLI) error {
	cfg, closer, err := globals.setup(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	adapter, err := ble.NewAdapter(cfg)
	if err != nil {
		return err
	}
	defer closeAdapter(adapter)

	return tui.Run(tui.Options{
		Config:  cfg,
		Adapter: adapter,
		Store:   openStore(cfg),
	})
}

// --- Scan Command ---

type ScanCmd struct {
	Duration time.Duration `short:"d" help:"Scan window (defaults to scan_period)"`
	JSON     bool          `help:"Print results as JSON"`
}

func (c *ScanCmd) Run(globals *CLI) error {
	cfg, closer, err := globals.setup(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	adapter, err := openAdapter(cfg)
	if err != nil {
		return err
	}
	defer closeAdapter(adapter)

	period := cfg.ScanPeriod.Std()
	if c.Duration > 0 {
		period = c.Duration
	}

	ctx, cancel := signalContext()
	defer cancel()
	return commands.Scan(ctx, os.Stdout, adapter, period, c.JSON)
}

// --- Device Commands ---

type ExploreCmd struct {
	Address string `arg:"" help:"Device address (MAC, or UUID on macOS)"`
}

func (c *ExploreCmd) Run(globals *CLI) error {
	cfg, closer, err := globals.setup(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	adapter, err := openAdapter(cfg)
	if err != nil {
		return err
	}
	defer closeAdapter(adapter)

	ctx, cancel := signalContext()
	defer cancel()
	return commands.Explore(ctx, os.Stdout, newController(cfg, adapter, openStore(cfg), c.Address))
}

type LedCmd struct {
	Address string `arg:"" help:"Device address (MAC, or UUID on macOS)"`
	State   string `arg:"" help:"on, off, 1, 2 or 3"`
}

func (c *LedCmd) Run(globals *CLI) error {
	state, err := ble.ParseLEDState(c.State)
	if err != nil {
		return err
	}

	cfg, closer, err := globals.setup(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	adapter, err := openAdapter(cfg)
	if err != nil {
		return err
	}
	defer closeAdapter(adapter)

	ctx, cancel := signalContext()
	defer cancel()
	return commands.Led(ctx, os.Stdout, newController(cfg, adapter, openStore(cfg), c.Address), state)
}

// --- Store Commands ---

type DevicesCmd struct {
	List   DevicesListCmd   `cmd:"" default:"withargs" help:"List known devices"`
	Forget DevicesForgetCmd `cmd:"" help:"Remove a device from the store"`
}

type DevicesListCmd struct {
	JSON bool `help:"Print results as JSON"`
}

func (c *DevicesListCmd) Run(globals *CLI) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	return commands.ListDevices(os.Stdout, st, c.JSON)
}

type DevicesForgetCmd struct {
	Address string `arg:"" help:"Device address"`
}

func (c *DevicesForgetCmd) Run(globals *CLI) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	return commands.ForgetDevice(os.Stdout, st, c.Address)
}

// --- Config Command ---

type ConfigCmd struct{}

func (c *ConfigCmd) Run(globals *CLI) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	return commands.PrintConfig(os.Stdout, cfg)
}
