// Package store keeps a small JSON index of devices the tool has
// connected to, so they can be offered again without a scan.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
)

// ErrNotFound is returned for addresses the store has never seen.
var ErrNotFound = errors.New("device not found in store")

// Store manages the known-devices index file.
type Store struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// Index is the on-disk format.
type Index struct {
	Devices   map[string]Entry `json:"devices"` // address -> entry
	UpdatedAt time.Time        `json:"updated_at"`
}

// Open opens or creates a store backed by the file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &Store{path: path, now: time.Now}, nil
}

// Path returns the index file location.
func (s *Store) Path() string {
	return s.path
}

// RecordConnect upserts p and bumps its connection count.
func (s *Store) RecordConnect(p ble.Peripheral) error {
	return s.update(p.Address, func(e *Entry, now time.Time) {
		if p.Name != "" {
			e.Name = p.Name
		}
		if p.RSSI != 0 {
			e.RSSI = p.RSSI
		}
		e.Connections++
		e.LastConnected = now
		e.addEvent(Event{Timestamp: now, Method: "connect"})
	})
}

// RecordLED remembers the last LED state written to address.
func (s *Store) RecordLED(address string, state ble.LEDState) error {
	return s.update(address, func(e *Entry, now time.Time) {
		e.LastLED = state.String()
		e.addEvent(Event{Timestamp: now, Method: "led", Value: state.String()})
	})
}

// Get returns the entry for address.
func (s *Store) Get(address string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	e, ok := index.Devices[normalizeAddress(address)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return &e, nil
}

// List returns all entries, most recently connected first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(index.Devices))
	for _, e := range index.Devices {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LastConnected.Equal(entries[j].LastConnected) {
			return entries[i].Address < entries[j].Address
		}
		return entries[i].LastConnected.After(entries[j].LastConnected)
	})
	return entries, nil
}

// Recent returns at most n entries from List.
func (s *Store) Recent(n int) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Forget removes address from the index.
func (s *Store) Forget(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	key := normalizeAddress(address)
	if _, ok := index.Devices[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	delete(index.Devices, key)
	return s.saveIndex(index)
}

// Count returns the number of known devices.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}
	return len(index.Devices), nil
}

func (s *Store) update(address string, fn func(e *Entry, now time.Time)) error {
	key := normalizeAddress(address)
	if key == "" {
		return errors.New("empty device address")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	now := s.now()
	e, ok := index.Devices[key]
	if !ok {
		e = Entry{Address: key, CreatedAt: now}
	}
	fn(&e, now)
	index.Devices[key] = e
	return s.saveIndex(index)
}

func (s *Store) loadIndex() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Index{Devices: make(map[string]Entry)}, nil
	}
	if err != nil {
		return nil, err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if index.Devices == nil {
		index.Devices = make(map[string]Entry)
	}
	return &index, nil
}

func (s *Store) saveIndex(index *Index) error {
	index.UpdatedAt = s.now()
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return os.Rename(tmp, s.path)
}
