package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/domain/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("r-%d", n.Add(1)) }
}

type recorder struct {
	mu    sync.Mutex
	saves [][]model.Result
	fail  error
}

func (r *recorder) persist(_ context.Context, results []model.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.saves = append(r.saves, results)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func TestUpsert(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ctx := context.Background()
		at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
		store := New(nil, WithClock(fixedClock(at)), WithIDGenerator(sequentialIDs()))
		rec := &recorder{}

		Convey("When a placement is recorded", func() {
			res, replaced, err := store.Upsert(ctx, Placement{
				GameID:          " chess ",
				Position:        1,
				ParticipantName: " Ali ",
				Faculty:         "Faculty of Law",
			}, rec.persist)

			Convey("Then it is stored trimmed, stamped and persisted", func() {
				So(err, ShouldBeNil)
				So(replaced, ShouldBeFalse)
				So(string(res.ID), ShouldEqual, "r-1")
				So(res.GameID, ShouldEqual, "chess")
				So(res.ParticipantName, ShouldEqual, "Ali")
				So(res.CreatedAt.Equal(at), ShouldBeTrue)
				So(res.CreatedAt.Location(), ShouldEqual, time.UTC)
				So(store.Len(), ShouldEqual, 1)
				So(rec.count(), ShouldEqual, 1)
				So(len(rec.saves[0]), ShouldEqual, 1)
			})
		})

		Convey("When the same slot is recorded twice", func() {
			_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: 1, ParticipantName: "Ali", Faculty: "Faculty of Law"}, rec.persist)
			So(err, ShouldBeNil)
			res, replaced, err := store.Upsert(ctx, Placement{GameID: "chess", Position: 1, ParticipantName: "Sara", Faculty: "Faculty of Arts"}, rec.persist)

			Convey("Then the second replaces the first", func() {
				So(err, ShouldBeNil)
				So(replaced, ShouldBeTrue)
				list := store.List()
				So(len(list), ShouldEqual, 1)
				So(list[0].ParticipantName, ShouldEqual, "Sara")
				So(list[0].ID, ShouldEqual, res.ID)
			})
		})

		Convey("When different positions of one game are recorded", func() {
			for pos := 1; pos <= 3; pos++ {
				_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: pos, Faculty: "Faculty of Law"}, rec.persist)
				So(err, ShouldBeNil)
			}

			Convey("Then each position holds its own result", func() {
				So(store.Len(), ShouldEqual, 3)
			})
		})

		Convey("When a team placement carries a roster", func() {
			res, _, err := store.Upsert(ctx, Placement{
				GameID:      "football",
				Position:    2,
				Faculty:     "Faculty of Medicine",
				TeamPlayers: model.Players(" Omar ", "", "Yusuf"),
			}, rec.persist)

			Convey("Then blank names are dropped", func() {
				So(err, ShouldBeNil)
				So(res.TeamPlayers.Names(), ShouldResemble, []string{"Omar", "Yusuf"})
			})
		})
	})
}

func TestUpsertValidation(t *testing.T) {
	Convey("Given a ledger with one result", t, func() {
		ctx := context.Background()
		store := New(nil)
		rec := &recorder{}
		_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: 1, Faculty: "Faculty of Law"}, rec.persist)
		So(err, ShouldBeNil)

		cases := []struct {
			name string
			p    Placement
		}{
			{"missing faculty", Placement{GameID: "chess", Position: 1}},
			{"blank faculty", Placement{GameID: "chess", Position: 1, Faculty: "   "}},
			{"missing game", Placement{Position: 1, Faculty: "Faculty of Law"}},
			{"zero position", Placement{GameID: "chess", Faculty: "Faculty of Law"}},
			{"negative position", Placement{GameID: "chess", Position: -2, Faculty: "Faculty of Law"}},
		}

		for _, tc := range cases {
			Convey("When the placement has "+tc.name, func() {
				_, _, err := store.Upsert(ctx, tc.p, rec.persist)

				Convey("Then it is rejected without touching the ledger", func() {
					So(errors.Is(err, ErrValidation), ShouldBeTrue)
					So(store.Len(), ShouldEqual, 1)
					So(store.List()[0].Faculty, ShouldEqual, "Faculty of Law")
					So(rec.count(), ShouldEqual, 1)
				})
			})
		}
	})
}

func TestDelete(t *testing.T) {
	Convey("Given a ledger with two results", t, func() {
		ctx := context.Background()
		store := New(nil)
		rec := &recorder{}
		for pos := 1; pos <= 2; pos++ {
			_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: pos, Faculty: "Faculty of Law"}, rec.persist)
			So(err, ShouldBeNil)
		}

		Convey("When a result is deleted twice", func() {
			first, err1 := store.Delete(ctx, "chess", 1, rec.persist)
			second, err2 := store.Delete(ctx, "chess", 1, rec.persist)

			Convey("Then both succeed and only the first removes anything", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(store.Len(), ShouldEqual, 1)
				So(store.List()[0].Position, ShouldEqual, 2)
				So(rec.count(), ShouldEqual, 4)
			})
		})

		Convey("When an unknown slot is deleted", func() {
			removed, err := store.Delete(ctx, "poetry", 9, rec.persist)

			Convey("Then nothing changes", func() {
				So(err, ShouldBeNil)
				So(removed, ShouldBeFalse)
				So(store.Len(), ShouldEqual, 2)
			})
		})
	})
}

func TestPersistFailure(t *testing.T) {
	Convey("Given a ledger whose storage starts failing", t, func() {
		ctx := context.Background()
		store := New(nil)
		rec := &recorder{}
		_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: 1, ParticipantName: "Ali", Faculty: "Faculty of Law"}, rec.persist)
		So(err, ShouldBeNil)
		boom := errors.New("disk full")
		rec.fail = boom

		Convey("When an upsert is attempted", func() {
			_, _, err := store.Upsert(ctx, Placement{GameID: "chess", Position: 1, ParticipantName: "Sara", Faculty: "Faculty of Arts"}, rec.persist)

			Convey("Then the error surfaces and the old result stays", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				list := store.List()
				So(len(list), ShouldEqual, 1)
				So(list[0].ParticipantName, ShouldEqual, "Ali")
			})
		})

		Convey("When a delete is attempted", func() {
			_, err := store.Delete(ctx, "chess", 1, rec.persist)

			Convey("Then the result is still present", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(store.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestConcurrentUpserts(t *testing.T) {
	Convey("Given many writers racing for the same slot", t, func() {
		ctx := context.Background()
		store := New(nil)
		rec := &recorder{}
		const writers = 32

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, _ = store.Upsert(ctx, Placement{
					GameID:          "chess",
					Position:        1,
					ParticipantName: fmt.Sprintf("player-%d", i),
					Faculty:         "Faculty of Law",
				}, rec.persist)
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one result occupies the slot", func() {
			So(store.Len(), ShouldEqual, 1)
			So(rec.count(), ShouldEqual, writers)
			last := rec.saves[len(rec.saves)-1]
			So(len(last), ShouldEqual, 1)
			So(last[0].ID, ShouldEqual, store.List()[0].ID)
		})
	})
}

func TestHydrate(t *testing.T) {
	Convey("Given a snapshot holding duplicate slots", t, func() {
		older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := older.Add(time.Hour)
		store := New([]model.Result{
			{ID: "a", GameID: "chess", Position: 1, Faculty: "Faculty of Law", CreatedAt: newer},
			{ID: "b", GameID: "chess", Position: 1, Faculty: "Faculty of Arts", CreatedAt: older},
			{ID: "c", GameID: "chess", Position: 2, Faculty: "Faculty of Arts", CreatedAt: older},
		})

		Convey("Then the newest result per slot survives", func() {
			list := store.List()
			So(len(list), ShouldEqual, 2)
			So(string(list[0].ID), ShouldEqual, "a")
			So(string(list[1].ID), ShouldEqual, "c")
		})

		Convey("Then List hands out independent copies", func() {
			list := store.List()
			list[0].Faculty = "changed"
			So(store.List()[0].Faculty, ShouldEqual, "Faculty of Law")
		})
	})
}

func TestParsePosition(t *testing.T) {
	Convey("Given textual positions", t, func() {
		Convey("Then positive integers parse", func() {
			n, err := ParsePosition(" 3 ")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("Then everything else is a validation error", func() {
			for _, raw := range []string{"", "0", "-1", "1.5", "abc", "2x"} {
				_, err := ParsePosition(raw)
				So(errors.Is(err, ErrValidation), ShouldBeTrue)
			}
		})
	})
}
