// Package kv provides the short-lived key-value state shared by the rate
// limiter and the verification code service. Every entry carries its own
// expiry; a read that meets an expired entry evicts it and reports a miss.
package kv

import (
	"context"
	"log/slog"
	"time"
)

// Store is a key-value store with per-entry expiry.
type Store interface {
	// Get returns the value and true, or false if the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Sweep evicts expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// Sweeper calls Sweep on a fixed interval until its context is cancelled.
type Sweeper struct {
	store    Store
	interval time.Duration
	name     string
}

func NewSweeper(name string, store Store, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval, name: name}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.store.Sweep(ctx)
			if err != nil {
				slog.Warn("kv sweep failed", "store", s.name, "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("kv sweep evicted entries", "store", s.name, "count", n)
			}
		}
	}
}
