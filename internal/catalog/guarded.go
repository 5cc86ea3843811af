package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/theater-billing/internal/resilience"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// GuardedStore wraps a Store with a circuit breaker and retries reads that
// fail for infrastructure reasons. Catalog misses never trip the breaker.
type GuardedStore struct {
	inner       Store
	breaker     *resilience.Breaker
	attempts    int
	baseBackoff time.Duration
}

// GuardConfig configures a GuardedStore.
type GuardConfig struct {
	Breaker     *resilience.Breaker
	ReadRetries int
	BaseBackoff time.Duration
}

// NewGuardedStore wraps inner. A nil breaker gets a default one targeting "catalog".
func NewGuardedStore(inner Store, cfg GuardConfig) *GuardedStore {
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{Target: "catalog", MinRequests: 5})
	}
	retries := max(cfg.ReadRetries, 0)
	backoff := cfg.BaseBackoff
	if backoff <= 0 {
		backoff = 25 * time.Millisecond
	}
	return &GuardedStore{inner: inner, breaker: breaker, attempts: retries + 1, baseBackoff: backoff}
}

// Get implements Store.
func (s *GuardedStore) Get(ctx context.Context, id string) (theater.Play, error) {
	var play theater.Play
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		play, err = s.inner.Get(ctx, id)
		return err
	})
	return play, err
}

// List implements Store.
func (s *GuardedStore) List(ctx context.Context) (theater.Plays, error) {
	var plays theater.Plays
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		plays, err = s.inner.List(ctx)
		return err
	})
	return plays, err
}

// Put implements Store. Writes are not retried.
func (s *GuardedStore) Put(ctx context.Context, id string, play theater.Play) error {
	return s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.inner.Put(ctx, id, play)
	}, isStoreFailure)
}

// Delete implements Store.
func (s *GuardedStore) Delete(ctx context.Context, id string) error {
	return s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.inner.Delete(ctx, id)
	}, isStoreFailure)
}

func (s *GuardedStore) read(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = s.breaker.Do(ctx, fn, isStoreFailure)
		if err == nil || !isStoreFailure(err) || errors.Is(err, resilience.ErrOpenCircuit) || attempt == s.attempts {
			return err
		}
		timer := time.NewTimer(resilience.Backoff(s.baseBackoff, attempt, 0.2))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// isStoreFailure reports whether err points at the backing store rather than the request.
func isStoreFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, theater.ErrUnknownPlay),
		errors.Is(err, errEmptyID),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// Ping fails fast while the breaker is open and otherwise pings the wrapped
// store when it is backed by a remote service.
func (s *GuardedStore) Ping(ctx context.Context) error {
	if s.breaker.State() == resilience.Open {
		return resilience.ErrOpenCircuit
	}
	if p, ok := s.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
