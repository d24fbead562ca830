package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "devices.json"))
	require.NoError(t, err)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestEmptyStore(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Get("AA:BB:CC:DD:EE:FF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordConnectUpserts(t *testing.T) {
	s := openTestStore(t)
	p := ble.Peripheral{Address: "aa:bb:cc:dd:ee:ff", Name: "STM32WB", RSSI: -60}

	require.NoError(t, s.RecordConnect(p))
	require.NoError(t, s.RecordConnect(ble.Peripheral{Address: p.Address}))

	e, err := s.Get("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", e.Address)
	assert.Equal(t, "STM32WB", e.Name, "nameless reconnect keeps the known name")
	assert.Equal(t, int16(-60), e.RSSI)
	assert.Equal(t, 2, e.Connections)
	assert.Len(t, e.Events, 2)
	assert.True(t, e.LastConnected.After(e.CreatedAt))
}

func TestRecordLED(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RecordConnect(ble.Peripheral{Address: "11:22:33:44:55:66"}))
	require.NoError(t, s.RecordLED("11:22:33:44:55:66", ble.LED1))
	require.NoError(t, s.RecordLED("11:22:33:44:55:66", ble.LEDOff))

	e, err := s.Get("11:22:33:44:55:66")
	require.NoError(t, err)
	assert.Equal(t, "NONE", e.LastLED)
	require.Len(t, e.Events, 3)
	assert.Equal(t, "led", e.Events[1].Method)
	assert.Equal(t, "LED_1", e.Events[1].Value)
}

func TestEventsAreCapped(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < maxEvents+5; i++ {
		require.NoError(t, s.RecordLED("11:22:33:44:55:66", ble.LED1))
	}
	e, err := s.Get("11:22:33:44:55:66")
	require.NoError(t, err)
	assert.Len(t, e.Events, maxEvents)
}

func TestListOrderAndRecent(t *testing.T) {
	s := openTestStore(t)
	for _, a := range []string{"01", "02", "03"} {
		require.NoError(t, s.RecordConnect(ble.Peripheral{Address: a}))
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "03", entries[0].Address)
	assert.Equal(t, "01", entries[2].Address)

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "03", recent[0].Address)
	assert.Equal(t, "02", recent[1].Address)
}

func TestForget(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RecordConnect(ble.Peripheral{Address: "AA"}))

	require.NoError(t, s.Forget("aa"))
	_, err := s.Get("AA")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Forget("AA"), ErrNotFound)
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordConnect(ble.Peripheral{Address: "AA", Name: "Board"}))

	reopened, err := Open(path)
	require.NoError(t, err)
	e, err := reopened.Get("AA")
	require.NoError(t, err)
	assert.Equal(t, "Board", e.DisplayName())
	assert.Equal(t, ble.Peripheral{Address: "AA", Name: "Board"}, e.Peripheral())
}

func TestCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.List()
	assert.Error(t, err)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestDisplayNameFallback(t *testing.T) {
	assert.Equal(t, ble.UnknownName, Entry{Address: "AA"}.DisplayName())
}
