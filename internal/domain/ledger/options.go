package ledger

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how result ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.newID = next
		}
	}
}
