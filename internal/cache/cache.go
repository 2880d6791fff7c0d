// Package cache provides a small generic LRU cache with expiry.
package cache

import (
	"context"
	"time"

	applog "pocketwise/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Sweeper drops expired entries from a set of caches on a fixed interval.
type Sweeper struct {
	caches []Cleaner
	logger *applog.Logger
}

func NewSweeper(logger *applog.Logger, caches ...Cleaner) *Sweeper {
	if logger == nil {
		logger = applog.Nop()
	}
	return &Sweeper{caches: caches, logger: logger}
}

// Sweep cleans every cache once and returns how many entries were dropped.
func (s *Sweeper) Sweep() int {
	total := 0
	for _, c := range s.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is done. It always returns nil so it
// can sit in an errgroup next to the server.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.DebugContext(ctx, "Expired cache entries dropped", applog.FieldCount, n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
