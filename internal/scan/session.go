// Package scan runs time-boxed BLE discovery and keeps the visible list of
// peripherals, in discovery order and unique by address.
package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fr-isen/smartdevice-tool/internal/ble"
	"github.com/fr-isen/smartdevice-tool/internal/config"
)

// DefaultPeriod bounds a scan that is not stopped by hand.
const DefaultPeriod = 10 * time.Second

// ErrScanInProgress is returned by Start while a scan is running.
var ErrScanInProgress = errors.New("scan already in progress")

// Option configures a Session.
type Option func(*Session)

// WithPeriod sets the scan duration.
func WithPeriod(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.period = d
		}
	}
}

// WithOnFound registers a callback for every newly listed peripheral.
// It runs on the adapter's goroutine.
func WithOnFound(fn func(ble.Peripheral)) Option {
	return func(s *Session) { s.onFound = fn }
}

// WithOnDone registers a callback run once when a scan ends, by timeout,
// by Stop, or by failure (err != nil).
func WithOnDone(fn func(err error)) Option {
	return func(s *Session) { s.onDone = fn }
}

// Session owns one peripheral list and at most one running scan.
type Session struct {
	adapter ble.Adapter
	period  time.Duration
	onFound func(ble.Peripheral)
	onDone  func(error)

	mu       sync.Mutex
	list     []ble.Peripheral
	index    map[string]int
	scanning bool
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	lastErr  error
}

// New returns an idle session.
func New(adapter ble.Adapter, opts ...Option) *Session {
	s := &Session{
		adapter: adapter,
		period:  DefaultPeriod,
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period returns the configured scan duration.
func (s *Session) Period() time.Duration {
	return s.period
}

// Start enables the adapter, clears the list and begins a scan that stops
// by itself after the period. It returns once the scan is running; if the
// adapter cannot be enabled the scan is not started.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	prev := s.done
	s.mu.Unlock()

	// A stopped scan may still be unwinding inside the host stack.
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := s.adapter.Enable(); err != nil {
		config.Log.WithError(err).Error("Bluetooth unavailable, scan not started")
		return err
	}

	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	s.list = nil
	s.index = make(map[string]int)
	s.gen++
	gen := s.gen
	scanCtx, cancel := context.WithTimeout(ctx, s.period)
	done := make(chan struct{})
	s.scanning = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	config.Log.WithField("period", s.period).Info("Scanning started...")
	go s.run(scanCtx, cancel, gen, done)
	return nil
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, done chan struct{}) {
	err := s.adapter.Scan(ctx, func(p ble.Peripheral) {
		s.add(gen, p)
	})
	cancel()

	s.mu.Lock()
	if s.gen == gen {
		s.scanning = false
		s.cancel = nil
	}
	s.lastErr = err
	n := len(s.list)
	s.mu.Unlock()
	defer close(done)

	if err != nil {
		config.Log.WithError(err).Error("Scan failed")
	} else {
		config.Log.WithField("devices", n).Info("Scanning stopped.")
	}
	if s.onDone != nil {
		s.onDone(err)
	}
}

func (s *Session) add(gen uint64, p ble.Peripheral) {
	p.Address = strings.ToUpper(p.Address)

	s.mu.Lock()
	if gen != s.gen || !s.scanning {
		s.mu.Unlock()
		return
	}
	if _, ok := s.index[p.Address]; ok {
		s.mu.Unlock()
		return
	}
	s.index[p.Address] = len(s.list)
	s.list = append(s.list, p)
	s.mu.Unlock()

	config.Debugf("Found: '%s' (%s) %d dBm", p.Name, p.Address, p.RSSI)
	if s.onFound != nil {
		s.onFound(p)
	}
}

// Stop ends the running scan. Results delivered after Stop returns are
// dropped. Stopping an idle session does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanning {
		return
	}
	s.scanning = false
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Toggle starts an idle session or stops a running one, and reports
// whether a scan is running afterwards.
func (s *Session) Toggle(ctx context.Context) (bool, error) {
	if s.Scanning() {
		s.Stop()
		return false, nil
	}
	if err := s.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Wait blocks until the current (or last) scan has fully ended.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Run starts a scan and waits for it to end.
func (s *Session) Run(ctx context.Context) ([]ble.Peripheral, error) {
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	s.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ble.Peripheral(nil), s.list...), s.lastErr
}

// Scanning reports whether a scan is running.
func (s *Session) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// Results returns a copy of the list in discovery order.
func (s *Session) Results() []ble.Peripheral {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ble.Peripheral(nil), s.list...)
}

// Len returns the number of listed peripherals.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// Lookup returns the listed peripheral with the given address.
func (s *Session) Lookup(address string) (ble.Peripheral, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[strings.ToUpper(address)]
	if !ok {
		return ble.Peripheral{}, false
	}
	return s.list[i], true
}
