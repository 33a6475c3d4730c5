package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/podium/internal/domain/ledger"
)

func upsert(game string, pos int) Mutation {
	m := NewMutation(context.Background(), KindUpsert)
	m.Placement = ledger.Placement{GameID: game, Position: pos, Faculty: "Faculty of Law"}
	return m
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, upsert("chess", 1)); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	m := <-q.Dequeue()
	if m.Placement.GameID != "chess" || m.Kind != KindUpsert {
		t.Errorf("unexpected mutation %+v", m)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := q.Enqueue(ctx, upsert("chess", i)); err != nil {
			t.Fatalf("expected enqueue %d to succeed: %v", i, err)
		}
	}
	if err := q.Enqueue(ctx, upsert("chess", 3)); !errors.Is(err, ErrBackpressure) {
		t.Errorf("expected ErrBackpressure, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, upsert("chess", 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if q.Len() != 0 {
		t.Error("cancelled enqueue must not add a mutation")
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := q.Enqueue(ctx, upsert("poetry", i)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, upsert("poetry", 4)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var got []int
	for m := range q.Dequeue() {
		got = append(got, m.Placement.Position)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("expected pending mutations in order, got %v", got)
	}
}

func TestInMemoryQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				err := q.Enqueue(ctx, upsert("chess", id*100+j+1))
				if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, ErrBackpressure) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(i)
	}
	_ = q.Close()
	wg.Wait()

	n := 0
	for range q.Dequeue() {
		n++
	}
	if n > 1000 {
		t.Errorf("drained more than capacity: %d", n)
	}
}

func TestMutation_Respond(t *testing.T) {
	m := NewMutation(context.Background(), KindDelete)
	m.Respond(Outcome{Removed: true})
	m.Respond(Outcome{Removed: false})

	out := <-m.Reply
	if !out.Removed {
		t.Error("expected the first outcome to be kept")
	}
	if KindDelete.String() != "delete" || KindUpsert.String() != "upsert" || Kind(0).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}
