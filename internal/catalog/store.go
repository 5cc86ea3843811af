// Package catalog stores plays and snapshots them for statement rendering.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/theater-billing/internal/theater"
)

var errEmptyID = errors.New("put play: empty identifier")

// Store persists plays keyed by identifier. Misses are reported as theater.ErrUnknownPlay.
type Store interface {
	Get(ctx context.Context, id string) (theater.Play, error)
	List(ctx context.Context) (theater.Plays, error)
	Put(ctx context.Context, id string, play theater.Play) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	plays theater.Plays
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plays: theater.Plays{}}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (theater.Play, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plays.Lookup(id)
}

// List implements Store. The returned map is a copy.
func (s *MemoryStore) List(_ context.Context) (theater.Plays, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(theater.Plays, len(s.plays))
	for id, play := range s.plays {
		out[id] = play
	}
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id string, play theater.Play) error {
	if id == "" {
		return errEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[id] = play
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plays[id]; !ok {
		return fmt.Errorf("%w: %s", theater.ErrUnknownPlay, id)
	}
	delete(s.plays, id)
	return nil
}

// Seed writes every play into the store.
func Seed(ctx context.Context, store Store, plays theater.Plays) error {
	for id, play := range plays {
		if err := store.Put(ctx, id, play); err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}
	}
	return nil
}

// Snapshot fetches the plays an invoice references into an immutable lookup.
func Snapshot(ctx context.Context, store Store, inv theater.Invoice) (theater.Plays, error) {
	ids := inv.PlayIDs()
	plays := make(theater.Plays, len(ids))
	for _, id := range ids {
		play, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		plays[id] = play
	}
	return plays, nil
}
