package router

import (
	"sync"
	"time"
)

// ProviderStats is a point-in-time view of one provider's call history.
type ProviderStats struct {
	Successes   int64     `json:"successes"`
	Failures    int64     `json:"failures"`
	LastError   string    `json:"last_error,omitempty"`
	LastFailure time.Time `json:"last_failure,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// HealthTracker records per-provider outcomes for the health endpoint and
// telemetry. It never influences routing: failover is fixed at one fallback
// regardless of history.
type HealthTracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{stats: make(map[string]*ProviderStats)}
}

func (ht *HealthTracker) get(provider string) *ProviderStats {
	if s, ok := ht.stats[provider]; ok {
		return s
	}
	s := &ProviderStats{}
	ht.stats[provider] = s
	return s
}

// RecordSuccess records a successful call for the provider.
func (ht *HealthTracker) RecordSuccess(provider string) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	s := ht.get(provider)
	s.Successes++
	s.LastSuccess = time.Now()
}

// RecordFailure records a failed call and keeps the error message for the
// health view.
func (ht *HealthTracker) RecordFailure(provider string, err error) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	s := ht.get(provider)
	s.Failures++
	s.LastFailure = time.Now()
	if err != nil {
		s.LastError = err.Error()
	}
}

// Snapshot returns a copy of all provider stats.
func (ht *HealthTracker) Snapshot() map[string]ProviderStats {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	out := make(map[string]ProviderStats, len(ht.stats))
	for name, s := range ht.stats {
		out[name] = *s
	}
	return out
}
