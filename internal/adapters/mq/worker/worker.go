// Package worker runs the single goroutine that applies ledger mutations.
//
// Mutations are applied one at a time in queue order. Each one is persisted
// before the next starts, so two writes can never interleave.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/domain/ledger"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// ErrUnknownKind is reported for mutations the writer cannot apply.
var ErrUnknownKind = errors.New("unknown mutation kind")

// Ledger is the store the writer mutates.
type Ledger interface {
	Upsert(ctx context.Context, p ledger.Placement, persist ledger.Persister) (model.Result, bool, error)
	Delete(ctx context.Context, gameID string, position int, persist ledger.Persister) (bool, error)
	Len() int
}

// Queue defines how the writer receives mutations.
type Queue interface {
	Dequeue() <-chan queue.Mutation
}

// Writer drains the mutation queue.
type Writer struct {
	queue   Queue
	ledger  Ledger
	persist ledger.Persister
	name    string
	logger  logger.Logger
	done    chan struct{}
}

// NewWriter creates a writer. persist is called with the full result set
// after every mutation.
func NewWriter(q Queue, l Ledger, persist ledger.Persister, opts ...Option) *Writer {
	w := &Writer{
		queue:   q,
		ledger:  l,
		persist: persist,
		name:    "ledger-writer",
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run applies mutations until the queue is closed and drained or ctx is
// cancelled. Mutations left behind on cancellation are answered with the
// context error.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	mutations := w.queue.Dequeue()
	for {
		if ctx.Err() != nil {
			w.abandon(ctx, mutations)
			return
		}
		select {
		case <-ctx.Done():
			w.abandon(ctx, mutations)
			return
		case m, ok := <-mutations:
			if !ok {
				w.logger.Info(ctx, "mutation queue drained")
				return
			}
			m.Respond(w.apply(ctx, m))
		}
	}
}

// Done is closed when Run returns.
func (w *Writer) Done() <-chan struct{} { return w.done }

// Shutdown waits for Run to return. The caller closes the queue first.
func (w *Writer) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Writer) abandon(ctx context.Context, mutations <-chan queue.Mutation) {
	for {
		select {
		case m, ok := <-mutations:
			if !ok {
				return
			}
			m.Respond(queue.Outcome{Err: ctx.Err()})
		default:
			return
		}
	}
}

func (w *Writer) apply(ctx context.Context, m queue.Mutation) queue.Outcome { //nolint:gocritic // hugeParam: Mutation arrives by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordMutationLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	reqCtx := m.Ctx
	if reqCtx == nil {
		reqCtx = ctx
	}
	if err := reqCtx.Err(); err != nil {
		w.logger.Debug(ctx, "skipping abandoned mutation", logger.String("kind", m.Kind.String()))
		return queue.Outcome{Err: err}
	}
	// A started write runs to completion even if the submitter goes away.
	opCtx := context.WithoutCancel(reqCtx)

	var out queue.Outcome
	switch m.Kind {
	case queue.KindUpsert:
		out.Result, out.Replaced, out.Err = w.ledger.Upsert(opCtx, m.Placement, w.persist)
		if out.Err == nil {
			metrics.RecordResultRecorded(out.Replaced)
			w.logger.Info(ctx, "result recorded",
				logger.String("game_id", out.Result.GameID),
				logger.Int("position", out.Result.Position),
				logger.String("faculty", out.Result.Faculty),
				logger.Bool("replaced", out.Replaced),
			)
		}
	case queue.KindDelete:
		out.Removed, out.Err = w.ledger.Delete(opCtx, m.GameID, m.Position, w.persist)
		if out.Err == nil {
			metrics.RecordResultDeleted(out.Removed)
			w.logger.Info(ctx, "result deleted",
				logger.String("game_id", m.GameID),
				logger.Int("position", m.Position),
				logger.Bool("removed", out.Removed),
			)
		}
	default:
		out.Err = fmt.Errorf("%w: %d", ErrUnknownKind, m.Kind)
	}

	if out.Err != nil {
		if !errors.Is(out.Err, ledger.ErrValidation) {
			metrics.RecordErrorByComponent("writer", m.Kind.String()+"_failed")
			w.logger.Error(ctx, "mutation failed",
				logger.String("kind", m.Kind.String()),
				logger.Error(out.Err),
			)
		}
		return out
	}
	metrics.UpdateLedgerSize(w.ledger.Len())
	return out
}
