// Package memory provides an in-memory Medium. It backs tests and serves as
// the fail-soft fallback when the durable medium cannot be opened.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Evan-Linder/AgriProfit/internal/domain"
)

// ErrQuotaExceeded is returned by Set when a bounded medium is full.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrUnavailable is returned by every operation while the medium is marked
// unavailable.
var ErrUnavailable = errors.New("storage medium unavailable")

// Medium is a map-backed key-value medium, optionally capacity-bounded by
// the total byte size of keys and values, mirroring how browser storage
// enforces its quota.
type Medium struct {
	mu          sync.RWMutex
	data        map[string]string
	capacity    int // total bytes of keys+values; 0 means unbounded
	unavailable bool
}

// NewMedium creates an unbounded in-memory medium.
func NewMedium() *Medium {
	return &Medium{data: make(map[string]string)}
}

// NewBoundedMedium creates a medium that rejects writes once the sum of key
// and value bytes would exceed capacity.
func NewBoundedMedium(capacity int) *Medium {
	return &Medium{data: make(map[string]string), capacity: capacity}
}

// SetUnavailable toggles the medium into (or out of) a failing state in
// which every operation returns ErrUnavailable.
func (m *Medium) SetUnavailable(unavailable bool) {
	m.mu.Lock()
	m.unavailable = unavailable
	m.mu.Unlock()
}

// Get implements domain.Medium.
func (m *Medium) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return "", false, ErrUnavailable
	}
	value, ok := m.data[key]
	return value, ok, nil
}

// Set implements domain.Medium.
func (m *Medium) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return ErrUnavailable
	}
	if m.capacity > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k == key {
				continue
			}
			size += len(k) + len(v)
		}
		if size > m.capacity {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}

// Remove implements domain.Medium.
func (m *Medium) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

var _ domain.Medium = (*Medium)(nil)
