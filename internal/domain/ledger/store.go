// Package ledger owns the mutable set of recorded placements.
//
// The Store keeps at most one Result per (game, position). Writes are
// serialized and only become visible once the caller-supplied Persister has
// accepted the new result set, so a failed save leaves the ledger untouched.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
)

// Persister durably stores the next result set before it is published.
type Persister func(ctx context.Context, results []model.Result) error

// Store is the in-memory ledger.
type Store struct {
	// writeMu serializes mutate-then-persist sequences.
	writeMu sync.Mutex

	// mu guards publication of results to readers.
	mu      sync.RWMutex
	results []model.Result

	newID func() string
	now   func() time.Time
}

// New creates a Store hydrated with results. If the input holds several
// results for the same slot, the most recently created one is kept.
func New(results []model.Result, opts ...Option) *Store {
	s := &Store{
		newID: newResultID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.results = dedupe(results)
	return s
}

func newResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func dedupe(results []model.Result) []model.Result {
	keep := make(map[model.Slot]int, len(results))
	out := make([]model.Result, 0, len(results))
	for _, r := range results {
		r.TeamPlayers = r.TeamPlayers.Clone()
		if i, ok := keep[r.Key()]; ok {
			if !r.CreatedAt.Before(out[i].CreatedAt) {
				out[i] = r
			}
			continue
		}
		keep[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

// List returns a copy of every result. Order is not meaningful.
func (s *Store) List() []model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResults(s.results)
}

// Len returns the number of results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Upsert records a placement, replacing any result already holding the same
// (game, position). It returns the stored result and whether a previous
// result was replaced.
func (s *Store) Upsert(ctx context.Context, p Placement, persist Persister) (model.Result, bool, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Result{}, false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created := model.Result{
		ID:              model.ResultID(s.newID()),
		GameID:          p.GameID,
		Position:        p.Position,
		ParticipantName: p.ParticipantName,
		Faculty:         p.Faculty,
		TeamPlayers:     p.TeamPlayers.Clone(),
		CreatedAt:       s.now().UTC(),
	}

	current := s.published()
	next, removed := without(current, created.Key())
	next = append(next, created)

	if err := s.commit(ctx, next, persist); err != nil {
		return model.Result{}, false, err
	}
	return created, removed, nil
}

// Delete removes the result at (gameID, position). Deleting an empty slot
// is not an error; the returned flag reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, gameID string, position int, persist Persister) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.published()
	next, removed := without(current, model.Slot{GameID: gameID, Position: position})

	if err := s.commit(ctx, next, persist); err != nil {
		return false, err
	}
	return removed, nil
}

// published returns the current slice. Callers hold writeMu, so the slice
// cannot be swapped underneath them.
func (s *Store) published() []model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

func (s *Store) commit(ctx context.Context, next []model.Result, persist Persister) error {
	if persist != nil {
		if err := persist(ctx, cloneResults(next)); err != nil {
			return fmt.Errorf("persist ledger: %w", err)
		}
	}
	s.mu.Lock()
	s.results = next
	s.mu.Unlock()
	return nil
}

// without returns a new slice holding every result except the one at slot.
func without(results []model.Result, slot model.Slot) ([]model.Result, bool) {
	out := make([]model.Result, 0, len(results)+1)
	removed := false
	for _, r := range results {
		if r.Key() == slot {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

func cloneResults(in []model.Result) []model.Result {
	out := make([]model.Result, len(in))
	for i, r := range in {
		r.TeamPlayers = r.TeamPlayers.Clone()
		out[i] = r
	}
	return out
}
