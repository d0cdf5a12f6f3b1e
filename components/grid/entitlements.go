package grid

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// EntitlementLoader fetches feature flags for the signed-in user.
type EntitlementLoader func(ctx context.Context) (map[string]bool, error)

// Entitlements caches feature flags and reloads them in the background on
// Refetch. Concurrent refetches collapse into one load.
type Entitlements struct {
	load    EntitlementLoader
	logger  *slog.Logger
	mu      sync.RWMutex
	flags   map[string]bool
	loading atomic.Bool
	loads   atomic.Int64
	wg      sync.WaitGroup
}

// NewEntitlements builds an empty cache around load.
func NewEntitlements(load EntitlementLoader, logger *slog.Logger) *Entitlements {
	if logger == nil {
		logger = slog.Default()
	}
	return &Entitlements{load: load, logger: logger, flags: map[string]bool{}}
}

// Refetch implements Refetcher.
func (e *Entitlements) Refetch() {
	if e == nil || e.load == nil {
		return
	}
	if !e.loading.CompareAndSwap(false, true) {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.loading.Store(false)
		flags, err := e.load(context.Background())
		e.loads.Add(1)
		if err != nil {
			e.logger.Warn("grid: refetch entitlements failed", "error", err)
			return
		}
		e.mu.Lock()
		e.flags = flags
		e.mu.Unlock()
	}()
}

// Enabled reports whether feature is on.
func (e *Entitlements) Enabled(feature string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.flags[feature]
}

// Loads counts completed loads.
func (e *Entitlements) Loads() int64 {
	return e.loads.Load()
}

// Wait blocks until a running refetch finishes.
func (e *Entitlements) Wait() {
	e.wg.Wait()
}

// StaticSession is a fixed Session, handy for servers and tests.
type StaticSession struct {
	Email    string
	UserRole Role
	Features Refetcher
}

func (s StaticSession) UserEmail() string       { return s.Email }
func (s StaticSession) Role() Role              { return s.UserRole }
func (s StaticSession) Entitlements() Refetcher { return s.Features }
