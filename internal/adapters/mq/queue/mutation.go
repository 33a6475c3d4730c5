package queue

import (
	"context"

	"github.com/okian/podium/internal/domain/ledger"
	"github.com/okian/podium/internal/domain/model"
)

// Kind names a ledger mutation.
type Kind int

// Mutation kinds.
const (
	KindUpsert Kind = iota + 1
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindUpsert:
		return "upsert"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation is one write request for the ledger writer.
type Mutation struct {
	Kind Kind
	// Placement is set for KindUpsert.
	Placement ledger.Placement
	// GameID and Position are set for KindDelete.
	GameID   string
	Position int

	// Ctx is the submitter's context; the writer skips mutations whose
	// context is already done.
	Ctx context.Context
	// Reply receives exactly one Outcome. It must be buffered.
	Reply chan Outcome
}

// Outcome reports what a mutation did.
type Outcome struct {
	Result   model.Result
	Replaced bool
	Removed  bool
	Err      error
}

// NewMutation builds a mutation with a buffered reply channel.
func NewMutation(ctx context.Context, kind Kind) Mutation {
	return Mutation{Kind: kind, Ctx: ctx, Reply: make(chan Outcome, 1)}
}

// Respond delivers the outcome without blocking.
func (m Mutation) Respond(o Outcome) {
	if m.Reply == nil {
		return
	}
	select {
	case m.Reply <- o:
	default:
	}
}
