// Package ratelimit bounds how often an identity may invoke an action within
// a fixed window. A window is replaced once it has elapsed; callers over the
// ceiling are still charged, so repeated abuse never resets the clock early.
package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/applicant-intake/internal/infrastructure/kv"
)

// Config is the window length and ceiling for one action.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Per-action limits for the public intake routes.
var (
	Apply   = Config{Window: time.Hour, MaxRequests: 3}
	Presign = Config{Window: 10 * time.Minute, MaxRequests: 10}
	Resend  = Config{Window: time.Hour, MaxRequests: 5}
)

type Result struct {
	Success   bool
	Count     int
	Remaining int
	ResetAt   time.Time
}

// entry is the stored window. ResetAt is Unix milliseconds.
type entry struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"`
}

// Limiter checks identities against a kv.Store. The read-modify-write of an
// entry is serialized within the process only.
type Limiter struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
}

// New creates a Limiter. now may be nil, in which case time.Now is used.
func New(store kv.Store, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, now: now}
}

// Check charges identity one request against cfg. It never fails: a store
// error is logged and the request is allowed.
func (l *Limiter) Check(ctx context.Context, identity string, cfg Config) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := "ratelimit:" + identity

	var e entry
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		slog.Warn("rate limit store read failed", "identity", identity, "err", err)
		return Result{Success: true, Remaining: cfg.MaxRequests, ResetAt: now.Add(cfg.Window)}
	}
	if ok {
		if err := json.Unmarshal(raw, &e); err != nil {
			ok = false
		}
	}
	if !ok || e.ResetAt < now.UnixMilli() {
		e = entry{Count: 0, ResetAt: now.Add(cfg.Window).UnixMilli()}
	}
	e.Count++

	resetAt := time.UnixMilli(e.ResetAt)
	b, _ := json.Marshal(e)
	if err := l.store.Set(ctx, key, b, resetAt.Sub(now)); err != nil {
		slog.Warn("rate limit store write failed", "identity", identity, "err", err)
	}

	return Result{
		Success:   e.Count <= cfg.MaxRequests,
		Count:     e.Count,
		Remaining: max(0, cfg.MaxRequests-e.Count),
		ResetAt:   resetAt,
	}
}
