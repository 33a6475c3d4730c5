// Package service wires the catalog, ledger, session authority and snapshot
// storage into the operations the HTTP API depends on.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/catalog"
	"github.com/okian/podium/internal/domain/ledger"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/query"
	"github.com/okian/podium/internal/domain/session"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 1024
	defaultShutdownTimeout = 10 * time.Second
)

// Service lifecycle errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrMisconfigured = errors.New("service misconfigured")
)

// Service implements the API dependencies for the results ledger.
type Service struct {
	mu sync.RWMutex

	// Collaborators supplied by options
	gateway   repository.Gateway
	authority *session.Authority
	defaults  model.State
	ledgerOps []ledger.Option

	// Configuration
	queueSize       int
	shutdownTimeout time.Duration

	// Components built on Start
	catalog *catalog.Catalog
	ledger  *ledger.Store
	query   *query.Service
	queue   *queue.InMemoryQueue
	writer  *worker.Writer

	// State
	started      bool
	startedAt    time.Time
	loadOutcome  string
	cancelWriter context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGateway sets the snapshot storage.
func WithGateway(gw repository.Gateway) Option {
	return func(s *Service) {
		if gw != nil {
			s.gateway = gw
		}
	}
}

// WithAuthority sets the session authority used for login and verification.
func WithAuthority(a *session.Authority) Option {
	return func(s *Service) {
		if a != nil {
			s.authority = a
		}
	}
}

// WithDefaults overrides the state seeded when no snapshot exists.
func WithDefaults(state model.State) Option {
	return func(s *Service) {
		s.defaults = state.Clone()
	}
}

// WithQueueSize sets the maximum number of pending mutations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for pending writes.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLedgerOptions passes options through to the ledger store.
func WithLedgerOptions(opts ...ledger.Option) Option {
	return func(s *Service) {
		s.ledgerOps = append(s.ledgerOps, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaults:        catalog.DefaultState(),
		queueSize:       defaultQueueSize,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start hydrates the catalog and ledger from storage and starts the writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.gateway == nil {
		return fmt.Errorf("%w: no snapshot gateway", ErrMisconfigured)
	}
	if s.authority == nil {
		return fmt.Errorf("%w: no session authority", ErrMisconfigured)
	}

	s.logger.Info(ctx, "starting results service...")

	state, outcome, err := repository.Bootstrap(ctx, s.gateway, s.defaults, s.logger.Named("repository"))
	if err != nil {
		return fmt.Errorf("hydrate state: %w", err)
	}

	s.catalog = catalog.New(state.Games, state.Faculties)
	s.ledger = ledger.New(state.Results, s.ledgerOps...)
	s.query = query.New(s.catalog, s.ledger)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.writer = worker.NewWriter(s.queue, s.ledger, s.persist,
		worker.WithLogger(s.logger.Named("ledger-writer")),
	)

	// The writer outlives the start context; Stop ends it.
	writerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelWriter = cancel
	go s.writer.Run(writerCtx)

	metrics.UpdateCatalogGames(s.catalog.Len())
	metrics.UpdateLedgerSize(s.ledger.Len())

	s.started = true
	s.startedAt = time.Now()
	s.loadOutcome = outcome
	s.logger.Info(ctx, "results service started",
		logger.String("snapshot", outcome),
		logger.Int("games", s.catalog.Len()),
		logger.Int("faculties", len(state.Faculties)),
		logger.Int("results", s.ledger.Len()),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains pending writes and releases storage.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping results service...")

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	if err := s.writer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "pending writes abandoned", logger.Error(err))
	}
	cancel()
	s.cancelWriter()
	<-s.writer.Done()

	if err := s.gateway.Close(); err != nil {
		s.logger.Error(ctx, "error closing snapshot storage", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "results service stopped")
}

// persist saves the catalog together with results as one snapshot.
func (s *Service) persist(ctx context.Context, results []model.Result) error {
	games, faculties := s.catalog.Snapshot()
	return s.gateway.Save(ctx, model.State{
		Games:     games,
		Faculties: faculties,
		Results:   results,
	})
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Login exchanges the access code for a bearer token.
func (s *Service) Login(ctx context.Context, code string) (session.Session, error) {
	if s.authority == nil {
		return session.Session{}, ErrMisconfigured
	}
	sess, err := s.authority.Login(code)
	if err != nil {
		metrics.RecordLogin("rejected")
		s.log().Warn(ctx, "login rejected")
		return session.Session{}, err
	}
	metrics.RecordLogin("success")
	s.log().Info(ctx, "login accepted", logger.String("role", sess.Role))
	return sess, nil
}

// Verify validates a bearer token.
func (s *Service) Verify(_ context.Context, token string) (session.Claims, error) {
	if s.authority == nil {
		return session.Claims{}, ErrMisconfigured
	}
	claims, err := s.authority.Verify(token)
	if err != nil {
		metrics.RecordTokenVerifyFailure()
		return session.Claims{}, err
	}
	return claims, nil
}

// Games returns the catalog games sorted by name.
func (s *Service) Games(context.Context) ([]model.Game, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Games(), nil
}

// Faculties returns the catalog faculties sorted ascending.
func (s *Service) Faculties(context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Faculties(), nil
}

// Results returns the raw ledger contents.
func (s *Service) Results(context.Context) ([]model.Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.ledger.List(), nil
}

// Leaderboard returns the joined and sorted view of the ledger.
func (s *Service) Leaderboard(context.Context) ([]query.Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.query.Leaderboard(), nil
}

// RecordResult submits a placement and waits until it is stored. It
// returns the stored result and whether it replaced an earlier one.
func (s *Service) RecordResult(ctx context.Context, p ledger.Placement) (model.Result, bool, error) {
	if err := s.ready(); err != nil {
		return model.Result{}, false, err
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Result{}, false, err
	}
	if _, ok := s.catalog.Game(p.GameID); !ok {
		s.logger.Warn(ctx, "recording result for unknown game", logger.String("game_id", p.GameID))
	}
	if !s.catalog.HasFaculty(p.Faculty) {
		s.logger.Warn(ctx, "recording result for unknown faculty", logger.String("faculty", p.Faculty))
	}

	m := queue.NewMutation(ctx, queue.KindUpsert)
	m.Placement = p
	out, err := s.submit(ctx, m)
	if err != nil {
		return model.Result{}, false, err
	}
	return out.Result, out.Replaced, nil
}

// DeleteResult removes the placement at (gameID, position). Removing an
// empty slot succeeds; the flag reports whether anything was removed.
func (s *Service) DeleteResult(ctx context.Context, gameID string, position int) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	m := queue.NewMutation(ctx, queue.KindDelete)
	m.GameID = gameID
	m.Position = position
	out, err := s.submit(ctx, m)
	if err != nil {
		return false, err
	}
	return out.Removed, nil
}

func (s *Service) submit(ctx context.Context, m queue.Mutation) (queue.Outcome, error) { //nolint:gocritic // hugeParam: Mutation is passed by value for channel semantics
	if err := s.queue.Enqueue(ctx, m); err != nil {
		return queue.Outcome{}, err
	}
	select {
	case out := <-m.Reply:
		return out, out.Err
	case <-ctx.Done():
		return queue.Outcome{}, ctx.Err()
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"queueSize": s.queueSize,
	}
	if s.started {
		queueLen := s.queue.Len()
		results := s.ledger.Len()

		stats["queueLength"] = queueLen
		stats["games"] = s.catalog.Len()
		stats["results"] = results
		stats["snapshot"] = s.loadOutcome
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateLedgerSize(results)
	}
	return stats
}
