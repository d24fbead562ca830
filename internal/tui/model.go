package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/config"
	"github.com/fr-isen/smartdevice-tool/internal/device"
	"github.com/fr-isen/smartdevice-tool/internal/scan"
	"github.com/fr-isen/smartdevice-tool/internal/store"
)

// View represents different screens in the TUI.
type View int

const (
	ViewMain View = iota
	ViewScan
	ViewDevice
)

// recentLimit caps the known devices offered on the main menu.
const recentLimit = 5

// MenuItem represents a main menu option.
type MenuItem struct {
	Title       string
	Description string
	View        View
	Target      *ble.Peripheral // recent device shortcut
	Quit        bool
}

// deviceAction is one button of the device screen.
type deviceAction int

const (
	actionConnect deviceAction = iota
	actionLEDOn
	actionLEDOff
	actionDisconnect
)

var deviceActions = []struct {
	action deviceAction
	title  string
}{
	{actionConnect, "Connect to Device"},
	{actionLEDOn, "Turn On LED 1"},
	{actionLEDOff, "Turn Off LED"},
	{actionDisconnect, "Disconnect from Device"},
}

// Options wires the TUI to its collaborators.
type Options struct {
	Config  *config.Config
	Adapter ble.Adapter
	Store   *store.Store // optional
}

// Model is the main Bubbletea model for the TUI.
type Model struct {
	// State
	view          View
	prevView      View
	cursor        int
	cursorHistory map[View]int // Remember cursor position per view
	menuItems     []MenuItem
	width         int
	height        int

	// Collaborators
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.Config
	adapter ble.Adapter
	store   *store.Store
	recent  []store.Entry

	// Scan data
	session     *scan.Session
	events      chan tea.Msg
	peripherals []ble.Peripheral
	starting    bool
	scanning    bool
	scanStarted time.Time
	tickGen     int
	progress    ProgressState

	// Device data
	ctrl        *device.Controller
	target      ble.Peripheral
	connecting  bool
	connected   bool
	writing     bool
	services    []ble.Service
	controlUUID string
	ledState    string

	errorMsg  string
	statusMsg string

	// Components
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// --- Custom messages for async operations ---

// scanStartedMsg delivers the result of bringing up the adapter and
// starting a scan.
type scanStartedMsg struct {
	err error
}

// scanFoundMsg signals the scan list grew.
type scanFoundMsg struct {
	peripheral ble.Peripheral
}

// scanDoneMsg signals a scan ended by timeout, stop or failure.
type scanDoneMsg struct {
	err error
}

// connectMsg delivers the result of a connect attempt.
type connectMsg struct {
	ctrl *device.Controller
	err  error
}

// ledMsg delivers the result of an LED write.
type ledMsg struct {
	ctrl  *device.Controller
	state ble.LEDState
	err   error
}

// disconnectMsg delivers the result of a disconnect.
type disconnectMsg struct {
	ctrl *device.Controller
	err  error
}

// NewModel returns a model on the main menu.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}

	h := help.New()
	h.ShowAll = false // Use ShortHelp for horizontal layout

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	events := make(chan tea.Msg, 128)
	session := scan.New(opts.Adapter,
		scan.WithPeriod(cfg.ScanPeriod.Std()),
		scan.WithOnFound(func(p ble.Peripheral) { trySend(events, scanFoundMsg{peripheral: p}) }),
		scan.WithOnDone(func(err error) { trySend(events, scanDoneMsg{err: err}) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		view:          ViewMain,
		cursorHistory: make(map[View]int),
		ctx:           ctx,
		cancel:        cancel,
		cfg:           cfg,
		adapter:       opts.Adapter,
		store:         opts.Store,
		session:       session,
		events:        events,
		progress:      NewProgressState(),
		keys:          DefaultKeyMap(),
		help:          h,
		spinner:       s,
		styles:        DefaultStyles(),
	}
	m.loadRecent()
	return m
}

// trySend queues msg for the UI without blocking the BLE goroutine. Scan
// messages only prompt a re-read of the session.
func trySend(ch chan tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

// waitForScanEvent delivers the next scan message.
func waitForScanEvent(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m *Model) loadRecent() {
	m.recent = nil
	if m.store != nil {
		recent, err := m.store.Recent(recentLimit)
		if err != nil {
			config.Log.WithError(err).Warn("Failed to load known devices")
		}
		m.recent = recent
	}

	m.menuItems = []MenuItem{
		{
			Title:       "Scan for devices",
			Description: "To launch the scan of other devices",
			View:        ViewScan,
		},
	}
	for _, e := range m.recent {
		p := e.Peripheral()
		desc := fmt.Sprintf("%s, %d connection(s)", e.Address, e.Connections)
		if e.LastLED != "" {
			desc += ", last LED " + e.LastLED
		}
		m.menuItems = append(m.menuItems, MenuItem{
			Title:       e.DisplayName(),
			Description: desc,
			View:        ViewDevice,
			Target:      &p,
		})
	}
	m.menuItems = append(m.menuItems, MenuItem{
		Title:       "Quit",
		Description: "Leave the application",
		Quit:        true,
	})
	if m.view == ViewMain && m.cursor > m.maxCursor() {
		m.cursor = m.maxCursor()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForScanEvent(m.events), m.spinner.Tick)
}

// Close stops any scan and releases the connection. Run calls it once the
// program exits.
func (m Model) Close() {
	m.cancel()
	m.session.Stop()
	if m.ctrl != nil {
		if err := m.ctrl.Disconnect(); err != nil {
			config.Log.WithError(err).Warn("Disconnect on exit failed")
		}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.SetWidth(min(msg.Width-8, 60))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanStartedMsg:
		return m.handleScanStarted(msg)

	case scanFoundMsg:
		m.syncScan()
		return m, waitForScanEvent(m.events)

	case scanDoneMsg:
		m.syncScan()
		if msg.err != nil {
			m.errorMsg = "Scan failed: " + msg.err.Error()
		} else if !m.scanning && m.view == ViewScan {
			m.statusMsg = fmt.Sprintf("Scan finished, %d device(s) found", len(m.peripherals))
		}
		return m, waitForScanEvent(m.events)

	case scanTickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		m.syncScan()
		if !m.scanning {
			return m, nil
		}
		period := m.session.Period()
		elapsed := msg.at.Sub(m.scanStarted)
		left := (period - elapsed).Round(time.Second)
		if left < 0 {
			left = 0
		}
		m.progress.Update(float64(elapsed)/float64(period), fmt.Sprintf("Scanning... %s left", left))
		return m, scanTickCmd(m.tickGen)

	case connectMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		m.connecting = false
		m.syncDevice()
		if msg.err != nil {
			m.errorMsg = "Connection failed: " + msg.err.Error()
			m.statusMsg = ""
			return m, nil
		}
		m.statusMsg = "Connected to GATT server"
		if m.controlUUID == "" {
			svc, char := m.ctrl.ControlPosition()
			m.errorMsg = fmt.Sprintf("LED characteristic not found (service %d, characteristic %d)", svc, char)
		}
		m.loadRecent()
		return m, nil

	case ledMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		m.writing = false
		switch {
		case errors.Is(msg.err, ble.ErrNotConnected):
			m.errorMsg = "Not connected: connect to the device first"
		case errors.Is(msg.err, device.ErrNoControlCharacteristic):
			m.errorMsg = "LED characteristic not found."
		case msg.err != nil:
			m.errorMsg = "Write failed: " + msg.err.Error()
		default:
			m.errorMsg = ""
			m.ledState = msg.state.String()
			m.statusMsg = "LED state set to: " + m.ledState
		}
		return m, nil

	case disconnectMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		m.syncDevice()
		if msg.err != nil {
			m.errorMsg = "Disconnect failed: " + msg.err.Error()
			return m, nil
		}
		m.statusMsg = "Disconnected from device."
		return m, nil
	}

	return m, nil
}

// syncScan refreshes the scan fields from the session.
func (m *Model) syncScan() {
	m.peripherals = m.session.Results()
	was := m.scanning
	m.scanning = m.session.Scanning()
	if was && !m.scanning {
		m.progress.Complete()
	}
	if m.view == ViewScan && m.cursor > m.maxCursor() {
		m.cursor = m.maxCursor()
	}
}

// syncDevice refreshes the device fields from the controller.
func (m *Model) syncDevice() {
	if m.ctrl == nil {
		return
	}
	m.connected = m.ctrl.State() == device.Connected
	m.services = m.ctrl.Services()
	m.controlUUID, _ = m.ctrl.ControlUUID()
	if !m.connected {
		m.ledState = ""
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		if m.view == ViewMain {
			return m, tea.Quit
		}
		// Go back to main
		var cmd tea.Cmd
		m, cmd = m.leave()
		m.view = ViewMain
		m.cursor = 0
		return m, cmd

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Left):
		return m.goBack()

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		if m.cursor < 0 {
			m.cursor = m.maxCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		if m.cursor > m.maxCursor() {
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Right):
		return m.handleSelect()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.view {
	case ViewMain:
		if key.Matches(msg, m.keys.Refresh) {
			m.loadRecent()
			m.statusMsg = "Refreshed"
		}
	case ViewScan:
		if key.Matches(msg, m.keys.Toggle) {
			return m.toggleScan()
		}
	case ViewDevice:
		switch {
		case key.Matches(msg, m.keys.Connect):
			return m.runAction(actionConnect)
		case key.Matches(msg, m.keys.LEDOn):
			return m.runAction(actionLEDOn)
		case key.Matches(msg, m.keys.LEDOff):
			return m.runAction(actionLEDOff)
		}
	}
	return m, nil
}

// leave tears down the current screen: a scan is stopped, a device is
// disconnected.
func (m Model) leave() (Model, tea.Cmd) {
	m.cursorHistory[m.view] = m.cursor
	m.errorMsg = ""
	m.statusMsg = ""

	switch m.view {
	case ViewScan:
		m.session.Stop()
		m.syncScan()
		m.progress.Cancel()
	case ViewDevice:
		ctrl := m.ctrl
		m.ctrl = nil
		m.connecting = false
		m.connected = false
		m.writing = false
		m.services = nil
		m.controlUUID = ""
		m.ledState = ""
		m.loadRecent()
		if ctrl != nil {
			return m, disconnectCmd(ctrl)
		}
	}
	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewMain:
		return m, tea.Quit
	}

	prev := m.view
	var cmd tea.Cmd
	m, cmd = m.leave()
	m.view = ViewMain
	if prev == ViewDevice {
		m.view = m.prevView
	}
	m.cursor = m.cursorHistory[m.view]
	return m, cmd
}

func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewMain:
		if m.cursor >= len(m.menuItems) {
			return m, nil
		}
		item := m.menuItems[m.cursor]
		m.cursorHistory[m.view] = m.cursor
		switch {
		case item.Quit:
			return m, tea.Quit
		case item.Target != nil:
			return m.openDevice(*item.Target, ViewMain)
		case item.View == ViewScan:
			m.view = ViewScan
			m.cursor = 0
			m.errorMsg = ""
			m.statusMsg = ""
			return m.startScan()
		}

	case ViewScan:
		if m.cursor >= len(m.peripherals) {
			return m, nil
		}
		p := m.peripherals[m.cursor]
		m.session.Stop()
		m.syncScan()
		m.progress.Cancel()
		m.cursorHistory[m.view] = m.cursor
		return m.openDevice(p, ViewScan)

	case ViewDevice:
		if m.cursor < len(deviceActions) {
			return m.runAction(deviceActions[m.cursor].action)
		}
	}
	return m, nil
}

// startScan brings the adapter up off the event loop; handleScanStarted
// finishes the job.
func (m Model) startScan() (tea.Model, tea.Cmd) {
	m.errorMsg = ""
	m.statusMsg = "Starting scan..."
	if m.starting {
		return m, nil
	}
	m.starting = true
	return m, tea.Batch(startScanCmd(m.ctx, m.session), m.spinner.Tick)
}

func (m Model) handleScanStarted(msg scanStartedMsg) (tea.Model, tea.Cmd) {
	m.starting = false
	if m.view != ViewScan {
		// Left the scan screen while the adapter came up.
		m.session.Stop()
		m.syncScan()
		return m, nil
	}
	m.statusMsg = ""
	if msg.err != nil {
		m.syncScan()
		if !errors.Is(msg.err, scan.ErrScanInProgress) {
			m.errorMsg = ble.HelpMessage(msg.err)
		}
		return m, nil
	}
	m.cursor = 0
	m.scanStarted = time.Now()
	m.tickGen++
	m.progress.Start("Scanning...")
	m.syncScan()
	return m, tea.Batch(scanTickCmd(m.tickGen), m.spinner.Tick)
}

func (m Model) toggleScan() (tea.Model, tea.Cmd) {
	if m.session.Scanning() {
		m.session.Stop()
		m.syncScan()
		m.progress.Cancel()
		m.statusMsg = "Scan stopped"
		return m, nil
	}
	return m.startScan()
}

func (m Model) openDevice(p ble.Peripheral, from View) (tea.Model, tea.Cmd) {
	opts := []device.Option{
		device.WithControlPosition(m.cfg.Control.ServiceIndex, m.cfg.Control.CharacteristicIndex),
		device.WithConnectTimeout(m.cfg.ConnectTimeout.Std()),
	}
	if m.store != nil {
		opts = append(opts, device.WithRecorder(m.store))
	}

	m.prevView = from
	m.view = ViewDevice
	m.cursor = 0
	m.target = p
	m.ctrl = device.New(m.adapter, p, opts...)
	m.connecting = false
	m.connected = false
	m.writing = false
	m.services = nil
	m.controlUUID = ""
	m.ledState = ""
	m.errorMsg = ""
	m.statusMsg = ""
	return m, nil
}

func (m Model) runAction(action deviceAction) (tea.Model, tea.Cmd) {
	if m.ctrl == nil {
		return m, nil
	}
	switch action {
	case actionConnect:
		if m.connecting || m.connected {
			return m, nil
		}
		m.connecting = true
		m.errorMsg = ""
		m.statusMsg = "Connecting..."
		return m, tea.Batch(connectCmd(m.ctrl), m.spinner.Tick)

	case actionLEDOn, actionLEDOff:
		if m.writing {
			return m, nil
		}
		state := ble.LEDOff
		if action == actionLEDOn {
			state = ble.LEDOn
		}
		m.writing = true
		return m, ledCmd(m.ctrl, state)

	case actionDisconnect:
		m.connecting = false
		m.errorMsg = ""
		m.statusMsg = "Disconnecting..."
		return m, disconnectCmd(m.ctrl)
	}
	return m, nil
}

func (m Model) maxCursor() int {
	switch m.view {
	case ViewMain:
		return max(len(m.menuItems)-1, 0)
	case ViewScan:
		return max(len(m.peripherals)-1, 0)
	case ViewDevice:
		return len(deviceActions) - 1
	}
	return 0
}

// View renders the model.
func (m Model) View() string {
	var content string

	switch m.view {
	case ViewMain:
		content = m.viewMain()
	case ViewScan:
		content = m.viewScan()
	case ViewDevice:
		content = m.viewDevice()
	default:
		content = "Unknown view"
	}

	// Help
	helpView := m.styles.Help.Render(m.help.View(m.keys.forView(m.view)))

	return m.styles.App.Render(
		content + "\n" + helpView,
	)
}

func (m Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.renderTitleBar("Smart Device"))
	b.WriteString("\n\n")

	for i, item := range m.menuItems {
		if i == 1 && item.Target != nil {
			b.WriteString(m.styles.Subtitle.Render("Recent devices"))
			b.WriteString("\n\n")
		}
		if i == m.cursor {
			b.WriteString(m.styles.MenuItemSelected.Render("> " + item.Title))
		} else {
			b.WriteString(m.styles.MenuItem.Render("  " + item.Title))
		}
		b.WriteString("\n")
		b.WriteString(m.styles.MenuItemDim.Render(item.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) viewScan() string {
	var b strings.Builder

	b.WriteString(m.renderTitleBar("Scanning for BLE Devices"))
	b.WriteString("\n")

	toggle := m.keys.Toggle.Help().Key
	if m.scanning {
		b.WriteString(m.styles.Highlight.Render("⏸ Pause"))
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  ['%s' to stop]", toggle)))
		b.WriteString("\n")
		b.WriteString(m.progress.View())
	} else {
		b.WriteString(m.styles.Highlight.Render("▶ Play"))
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  ['%s' to scan]", toggle)))
	}
	b.WriteString("\n\n")

	if len(m.peripherals) == 0 {
		if m.scanning {
			b.WriteString(m.styles.Muted.Render("No devices found yet."))
		} else {
			b.WriteString(m.styles.Muted.Render("No devices."))
		}
		b.WriteString("\n")
	}

	nameWidth := 24
	if m.width > 0 {
		nameWidth = min(max(m.width-60, 16), 32)
	}
	for i, p := range m.peripherals {
		line := fit(p.DisplayName(), nameWidth) + "  " + fmt.Sprintf("%-40s", p.Address)
		rssi := m.styles.rssi(p.RSSI).Render(fmt.Sprintf("%4d dBm", p.RSSI))
		if i == m.cursor {
			b.WriteString(m.styles.MenuItemSelected.Render("> " + line))
		} else {
			b.WriteString(m.styles.MenuItem.Render("  " + line))
		}
		b.WriteString(" " + rssi + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) viewDevice() string {
	var b strings.Builder

	b.WriteString(m.renderTitleBar("Device"))
	b.WriteString("\n")

	b.WriteString(m.renderField("Name", m.target.DisplayName()))
	b.WriteString(m.renderField("Address", m.target.Address))
	if m.target.RSSI != 0 {
		b.WriteString(m.renderField("RSSI", fmt.Sprintf("%d dBm", m.target.RSSI)))
	}

	state := m.styles.StatusOffline.Render("disconnected")
	switch {
	case m.connecting:
		state = m.spinner.View() + " " + m.styles.Warning.Render("connecting")
	case m.connected:
		state = m.styles.StatusOnline.Render("connected")
	}
	b.WriteString(m.styles.Label.Render("State:") + " " + state + "\n")

	if m.connected {
		control := m.controlUUID
		if control == "" {
			control = "not found"
		}
		b.WriteString(m.renderField("LED control", control))
	}
	if m.ledState != "" {
		b.WriteString(m.renderField("LED", m.ledState))
	}
	b.WriteString("\n")

	for i, a := range deviceActions {
		if i == m.cursor {
			b.WriteString(m.styles.MenuItemSelected.Render("> " + a.title))
		} else {
			b.WriteString(m.styles.MenuItem.Render("  " + a.title))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.services) > 0 {
		b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d services", len(m.services))))
		b.WriteString("\n")
		svcIdx, charIdx := m.ctrl.ControlPosition()
		for i, svc := range m.services {
			b.WriteString(m.styles.Value.Render(fmt.Sprintf("[%d] %s", i, svc.UUID)))
			b.WriteString("\n")
			for j, char := range svc.Characteristics {
				line := fmt.Sprintf("    [%d] %s", j, char.UUID())
				if i == svcIdx && j == charIdx {
					b.WriteString(m.styles.Highlight.Render(line + "  LED"))
				} else {
					b.WriteString(m.styles.Muted.Render(line))
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

// renderTitleBar renders a consistent title bar with activity status.
func (m Model) renderTitleBar(title string) string {
	var parts []string

	parts = append(parts, m.styles.Title.Render(title))

	switch {
	case m.scanning:
		parts = append(parts, m.spinner.View()+" "+m.styles.Warning.Render("Scanning..."))
	case m.starting:
		parts = append(parts, m.spinner.View()+" "+m.styles.Warning.Render("Starting..."))
	case m.connecting:
		parts = append(parts, m.spinner.View()+" "+m.styles.Warning.Render("Connecting..."))
	case m.connected:
		parts = append(parts, m.styles.StatusOnline.Render("●"))
		parts = append(parts, m.styles.Muted.Render(m.target.Address))
	default:
		parts = append(parts, m.styles.StatusOffline.Render("○ Idle"))
	}

	return strings.Join(parts, "  ")
}

// renderStatus renders the error or status line.
func (m Model) renderStatus() string {
	switch {
	case m.errorMsg != "":
		return m.styles.Error.Render(m.errorMsg) + "\n"
	case m.statusMsg != "":
		return m.styles.Success.Render(m.statusMsg) + "\n"
	}
	return ""
}

func (m Model) renderField(label, value string) string {
	return m.styles.Label.Render(label+":") + " " + m.styles.Value.Render(value) + "\n"
}

// fit truncates s to width cells and pads it with spaces to exactly width.
func fit(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// --- Async commands for BLE operations ---

func startScanCmd(ctx context.Context, session *scan.Session) tea.Cmd {
	return func() tea.Msg {
		return scanStartedMsg{err: session.Start(ctx)}
	}
}

func connectCmd(ctrl *device.Controller) tea.Cmd {
	return func() tea.Msg {
		return connectMsg{ctrl: ctrl, err: ctrl.Connect(context.Background())}
	}
}

func ledCmd(ctrl *device.Controller, state ble.LEDState) tea.Cmd {
	return func() tea.Msg {
		return ledMsg{ctrl: ctrl, state: state, err: ctrl.SetLED(state)}
	}
}

func disconnectCmd(ctrl *device.Controller) tea.Cmd {
	return func() tea.Msg {
		return disconnectMsg{ctrl: ctrl, err: ctrl.Disconnect()}
	}
}
