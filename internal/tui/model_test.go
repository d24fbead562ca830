package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/ble/bletest"
	"github.com/fr-isen/smartdevice-tool/internal/config"
	"github.com/fr-isen/smartdevice-tool/internal/store"
)

const boardAddr = "02:80:E1:00:00:AA"

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, keyMsg(k))
}

// findMsg runs cmd, descending into batches, and returns the first message
// of type T.
func findMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("no command to run for %T", zero)
	}
	var walk func(c tea.Cmd) (T, bool)
	walk = func(c tea.Cmd) (T, bool) {
		if c == nil {
			return zero, false
		}
		switch msg := c().(type) {
		case T:
			return msg, true
		case tea.BatchMsg:
			for _, sub := range msg {
				if found, ok := walk(sub); ok {
					return found, true
				}
			}
		}
		return zero, false
	}
	msg, ok := walk(cmd)
	require.Truef(t, ok, "command produced no %T", zero)
	return msg
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fake adapter")
	}
}

type board struct {
	adapter *bletest.Adapter
	control *bletest.Characteristic
}

func newBoard(withControl bool) board {
	control := bletest.NewCharacteristic("0000fe41-8e22-4541-9d4c-21edae82ed19")
	services := bletest.Services([]string{"1800", "1801"})
	if withControl {
		services = bletest.Services(
			[]string{"1800", "1801", "0000fe40-cc7a-482a-984a-7f2ed5b3e58f"},
			nil, nil,
			[]ble.Characteristic{control},
		)
	}

	a := bletest.NewAdapter()
	a.AddPeripheral(ble.Peripheral{Address: boardAddr, Name: "P2PSRV1", RSSI: -55})
	a.AddPeripheral(ble.Peripheral{Address: "11:22:33:44:55:66", RSSI: -90})
	a.AddPeripheral(ble.Peripheral{Address: boardAddr, Name: "P2PSRV1", RSSI: -50})
	a.AddDevice(&bletest.Device{Address: boardAddr, Services: services})
	return board{adapter: a, control: control}
}

func newTestModel(t *testing.T, a ble.Adapter, st *store.Store) Model {
	t.Helper()
	m := NewModel(Options{Config: config.Defaults(), Adapter: a, Store: st})
	t.Cleanup(m.Close)
	return m
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "devices.json"))
	require.NoError(t, err)
	return st
}

// startScan moves from the main menu to a running scan with the queued
// advertisements delivered.
func startScan(t *testing.T, b board, m Model) Model {
	t.Helper()
	m, cmd := press(t, m, "enter")
	require.Equal(t, ViewScan, m.view)
	require.True(t, m.starting)
	m, _ = update(t, m, findMsg[scanStartedMsg](t, cmd))
	require.True(t, m.scanning)
	waitFor(t, b.adapter.Started())
	m, _ = update(t, m, scanFoundMsg{})
	return m
}

func TestMainMenu(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.RecordConnect(ble.Peripheral{Address: boardAddr, Name: "P2PSRV1"}))

	m := newTestModel(t, bletest.NewAdapter(), st)
	require.Len(t, m.menuItems, 3)
	assert.Equal(t, ViewScan, m.menuItems[0].View)
	require.NotNil(t, m.menuItems[1].Target)
	assert.Equal(t, boardAddr, m.menuItems[1].Target.Address)
	assert.True(t, m.menuItems[2].Quit)

	view := m.View()
	assert.Contains(t, view, "To launch the scan of other devices")
	assert.Contains(t, view, "Recent devices")
	assert.Contains(t, view, "P2PSRV1")
}

func TestQuitFromMain(t *testing.T) {
	m := newTestModel(t, bletest.NewAdapter(), nil)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestScanListsUniqueDevices(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))

	assert.True(t, m.scanning)
	require.Len(t, m.peripherals, 2)
	assert.Equal(t, int16(-55), m.peripherals[0].RSSI)

	view := m.View()
	assert.Contains(t, view, "Scanning for BLE Devices")
	assert.Contains(t, view, "P2PSRV1")
	assert.Contains(t, view, ble.UnknownName)
}

func TestScanToggle(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))

	m, _ = press(t, m, "s")
	assert.False(t, m.scanning)
	assert.False(t, m.session.Scanning())
	assert.Equal(t, "Scan stopped", m.statusMsg)
	waitFor(t, b.adapter.Finished())

	// Late results after a manual stop must not grow the list.
	b.adapter.AdvertiseLate(ble.Peripheral{Address: "77:77:77:77:77:77"})
	m, _ = update(t, m, scanFoundMsg{})
	assert.Len(t, m.peripherals, 2)

	m, cmd := press(t, m, " ")
	m, _ = update(t, m, findMsg[scanStartedMsg](t, cmd))
	assert.True(t, m.scanning)
	waitFor(t, b.adapter.Started())
}

func TestScanPermissionDenied(t *testing.T) {
	a := bletest.NewAdapter()
	a.EnableErr = ble.ErrPermissionDenied

	m := newTestModel(t, a, nil)
	m, cmd := press(t, m, "enter")
	m, _ = update(t, m, findMsg[scanStartedMsg](t, cmd))

	assert.Equal(t, ViewScan, m.view)
	assert.False(t, m.scanning)
	assert.Contains(t, m.errorMsg, "Permissions denied, Bluetooth scanning won't work.")
	assert.Zero(t, a.ScanCalls())
}

func TestScanStartsOffTheEventLoop(t *testing.T) {
	b := newBoard(true)
	m := newTestModel(t, b.adapter, nil)

	m, cmd := press(t, m, "enter")
	assert.Equal(t, ViewScan, m.view)
	assert.True(t, m.starting)
	assert.False(t, m.scanning)
	assert.Zero(t, b.adapter.EnableCalls(), "the adapter is brought up by a command")
	assert.Contains(t, m.View(), "Starting scan...")

	// A second start request while the first is pending is a no-op.
	m, again := press(t, m, "s")
	assert.Nil(t, again)

	m, _ = update(t, m, findMsg[scanStartedMsg](t, cmd))
	assert.Equal(t, 1, b.adapter.EnableCalls())
	assert.False(t, m.starting)
	assert.True(t, m.scanning)
	assert.Empty(t, m.statusMsg)
}

func TestLeavingBeforeScanStarts(t *testing.T) {
	b := newBoard(true)
	m := newTestModel(t, b.adapter, nil)

	m, cmd := press(t, m, "enter")
	m, _ = press(t, m, "esc")
	require.Equal(t, ViewMain, m.view)

	m, _ = update(t, m, findMsg[scanStartedMsg](t, cmd))
	assert.False(t, m.starting)
	assert.False(t, m.session.Scanning(), "a scan that came up after leaving is stopped")
	waitFor(t, b.adapter.Finished())
}

func TestCtrlCQuitsFromAnyScreen(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))
	m, _ = press(t, m, "enter")
	require.Equal(t, ViewDevice, m.view)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestScanListKeepsNonASCIINamesIntact(t *testing.T) {
	a := bletest.NewAdapter()
	a.AddPeripheral(ble.Peripheral{Address: boardAddr, Name: "éééééééééééééééééééééééééééééééééééé"})
	m := startScan(t, board{adapter: a}, newTestModel(t, a, nil))

	view := m.View()
	assert.True(t, utf8.ValidString(view))
	assert.Contains(t, view, strings.Repeat("é", 23)+"…  "+boardAddr)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "abc  ", fit("abc", 5))
	got := fit("éééééééééééééééééééé", 16)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 15)+"…", got)
	assert.Equal(t, 16, ansi.StringWidth(fit("温度センサー温度センサー", 16)))
}

func TestScanProgressTick(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))

	m, cmd := update(t, m, scanTickMsg{gen: m.tickGen, at: m.scanStarted.Add(5 * time.Second)})
	assert.NotNil(t, cmd)
	assert.InDelta(t, 0.5, m.progress.Percent(), 0.001)
	assert.Contains(t, m.View(), "5s left")

	_, cmd = update(t, m, scanTickMsg{gen: m.tickGen - 1, at: time.Now()})
	assert.Nil(t, cmd, "stale ticks are dropped")
}

func TestDeviceFlow(t *testing.T) {
	b := newBoard(true)
	st := openStore(t)
	m := startScan(t, b, newTestModel(t, b.adapter, st))

	m, _ = press(t, m, "enter")
	require.Equal(t, ViewDevice, m.view)
	assert.Equal(t, boardAddr, m.target.Address)
	assert.False(t, m.session.Scanning(), "opening a device stops the scan")
	assert.Contains(t, m.View(), "Connect to Device")

	m, cmd := press(t, m, "c")
	assert.True(t, m.connecting)
	m, _ = update(t, m, findMsg[connectMsg](t, cmd))
	assert.True(t, m.connected)
	assert.Len(t, m.services, 3)
	assert.Equal(t, b.control.UUID(), m.controlUUID)
	assert.Empty(t, m.errorMsg)

	// Turn On LED 1 via the action list.
	m, _ = press(t, m, "down")
	m, cmd = press(t, m, "enter")
	m, _ = update(t, m, findMsg[ledMsg](t, cmd))
	assert.Equal(t, "LED_1", m.ledState)
	assert.Equal(t, "LED state set to: LED_1", m.statusMsg)

	m, cmd = press(t, m, "0")
	m, _ = update(t, m, findMsg[ledMsg](t, cmd))
	assert.Equal(t, "NONE", m.ledState)
	assert.Equal(t, [][]byte{{0x01}, {0x00}}, b.control.Writes())

	// Leaving the screen disconnects and returns to the list.
	m, cmd = press(t, m, "esc")
	assert.Equal(t, ViewScan, m.view)
	assert.Nil(t, m.ctrl)
	findMsg[disconnectMsg](t, cmd)
	require.Len(t, b.adapter.Connections(), 1)
	assert.Equal(t, 1, b.adapter.Connections()[0].Disconnects())

	// The device is now offered on the main menu.
	m, _ = press(t, m, "esc")
	assert.Equal(t, ViewMain, m.view)
	require.Len(t, m.menuItems, 3)
	assert.Equal(t, "P2PSRV1", m.menuItems[1].Title)
}

func TestDeviceWithoutControlCharacteristic(t *testing.T) {
	b := newBoard(false)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))
	m, _ = press(t, m, "enter")

	m, cmd := press(t, m, "c")
	m, _ = update(t, m, findMsg[connectMsg](t, cmd))
	assert.True(t, m.connected)
	assert.Contains(t, m.errorMsg, "LED characteristic not found")
	assert.Contains(t, m.View(), "not found")

	m, cmd = press(t, m, "1")
	m, _ = update(t, m, findMsg[ledMsg](t, cmd))
	assert.Equal(t, "LED characteristic not found.", m.errorMsg)

	m, cmd = press(t, m, "0")
	m, _ = update(t, m, findMsg[ledMsg](t, cmd))
	assert.Equal(t, "LED characteristic not found.", m.errorMsg)
	assert.Empty(t, m.ledState)
}

func TestLEDBeforeConnect(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))
	m, _ = press(t, m, "enter")

	m, cmd := press(t, m, "1")
	m, _ = update(t, m, findMsg[ledMsg](t, cmd))
	assert.Contains(t, m.errorMsg, "Not connected")
	assert.Empty(t, b.control.Writes())
}

func TestDisconnectAction(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))
	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "c")
	m, _ = update(t, m, findMsg[connectMsg](t, cmd))

	m.cursor = int(actionDisconnect)
	m, cmd = press(t, m, "enter")
	m, _ = update(t, m, findMsg[disconnectMsg](t, cmd))
	assert.False(t, m.connected)
	assert.Empty(t, m.services)
	assert.Equal(t, "Disconnected from device.", m.statusMsg)
	assert.Equal(t, ViewDevice, m.view)
}

func TestStaleResultsIgnored(t *testing.T) {
	b := newBoard(true)
	m := startScan(t, b, newTestModel(t, b.adapter, nil))
	m, _ = press(t, m, "enter")

	m, connect := press(t, m, "c")
	m, _ = press(t, m, "esc")
	require.Equal(t, ViewScan, m.view)

	m, _ = update(t, m, findMsg[connectMsg](t, connect))
	assert.False(t, m.connected)
	assert.Nil(t, m.ctrl)
}

func TestRecentDeviceOpensDeviceScreen(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.RecordConnect(ble.Peripheral{Address: boardAddr, Name: "P2PSRV1"}))
	b := newBoard(true)

	m := newTestModel(t, b.adapter, st)
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "enter")
	require.Equal(t, ViewDevice, m.view)
	assert.Equal(t, "P2PSRV1", m.target.Name)
	assert.Zero(t, b.adapter.ScanCalls())

	m, _ = press(t, m, "esc")
	assert.Equal(t, ViewMain, m.view)
	assert.Equal(t, 1, m.cursor)
}
