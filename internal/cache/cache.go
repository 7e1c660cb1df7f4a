// Package cache provides read-through caching of simulation results.
// Two tiers are available: an in-process LRU for hot entries and an
// optional Redis tier shared across instances. Both serve the same
// interface so callers compose them freely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahse-server/internal/domain"
)

// ResultCache caches simulation results keyed by the request fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.SimulationResult, bool)
	Set(ctx context.Context, key string, result *domain.SimulationResult) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// cachedResult wraps a result with cache bookkeeping for the Redis tier.
type cachedResult struct {
	Result    *domain.SimulationResult `json:"result"`
	CachedAt  time.Time                `json:"cached_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// SimulationKey derives a stable cache key from the simulation inputs.
// Identical inputs always produce identical keys, so deterministic engine
// output makes cached and fresh results indistinguishable.
func SimulationKey(astronaut domain.AstronautProfile, mission domain.Mission) string {
	payload, _ := json.Marshal(struct {
		Astronaut domain.AstronautProfile `json:"astronaut"`
		Mission   domain.Mission          `json:"mission"`
	}{astronaut, mission})
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("simulation:%s", hex.EncodeToString(sum[:]))
}

// Tiered composes a fast local cache in front of a shared one. Reads
// promote shared hits into the local tier; writes go to both.
type Tiered struct {
	local  ResultCache
	shared ResultCache
}

// NewTiered builds a two-tier cache. Either tier may be nil, in which
// case the other serves alone.
func NewTiered(local, shared ResultCache) *Tiered {
	return &Tiered{local: local, shared: shared}
}

func (t *Tiered) Get(ctx context.Context, key string) (*domain.SimulationResult, bool) {
	if t.local != nil {
		if result, ok := t.local.Get(ctx, key); ok {
			return result, true
		}
	}
	if t.shared != nil {
		if result, ok := t.shared.Get(ctx, key); ok {
			if t.local != nil {
				_ = t.local.Set(ctx, key, result)
			}
			return result, true
		}
	}
	return nil, false
}

func (t *Tiered) Set(ctx context.Context, key string, result *domain.SimulationResult) error {
	var firstErr error
	if t.local != nil {
		if err := t.local.Set(ctx, key, result); err != nil {
			firstErr = err
		}
	}
	if t.shared != nil {
		if err := t.shared.Set(ctx, key, result); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	var firstErr error
	if t.local != nil {
		if err := t.local.Delete(ctx, key); err != nil {
			firstErr = err
		}
	}
	if t.shared != nil {
		if err := t.shared.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tiered) Close() error {
	var firstErr error
	if t.local != nil {
		if err := t.local.Close(); err != nil {
			firstErr = err
		}
	}
	if t.shared != nil {
		if err := t.shared.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
