package smoke

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/podium/internal/domain/catalog"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/query"
)

// ErrVerification is returned when the leaderboard breaks an expectation.
var ErrVerification = errors.New("verification failed")

// verifyOrder checks rows are sorted by game name and then position.
func verifyOrder(rows []query.Row) error {
	cmp := catalog.NameOrder()
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		c := cmp(prev.GameName, cur.GameName)
		if c > 0 || (c == 0 && prev.Position > cur.Position) {
			return fmt.Errorf("%w: row %d (%s/%d) sorts before row %d (%s/%d)",
				ErrVerification, i, cur.GameID, cur.Position, i-1, prev.GameID, prev.Position)
		}
	}
	return nil
}

// verifyUnique checks no (game, position) appears twice.
func verifyUnique(rows []query.Row) error {
	seen := make(map[model.Slot]struct{}, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.Key()]; dup {
			return fmt.Errorf("%w: slot %s/%d appears twice", ErrVerification, r.GameID, r.Position)
		}
		seen[r.Key()] = struct{}{}
	}
	return nil
}

// verifyWinners checks every written slot holds exactly one of the
// placements submitted for it. It returns the number of slots checked.
func verifyWinners(rows []query.Row, placements []Placement) (int, error) {
	candidates := make(map[model.Slot][]Placement)
	for _, p := range placements {
		candidates[p.Slot()] = append(candidates[p.Slot()], p)
	}
	bySlot := make(map[model.Slot]query.Row, len(rows))
	for _, r := range rows {
		bySlot[r.Key()] = r
	}

	for slot, want := range candidates {
		row, ok := bySlot[slot]
		if !ok {
			return 0, fmt.Errorf("%w: slot %s/%d missing", ErrVerification, slot.GameID, slot.Position)
		}
		if !slices.ContainsFunc(want, func(p Placement) bool { return matches(row, p) }) {
			return 0, fmt.Errorf("%w: slot %s/%d holds a result nobody submitted", ErrVerification, slot.GameID, slot.Position)
		}
	}
	return len(candidates), nil
}

func matches(row query.Row, p Placement) bool {
	return row.Faculty == p.Faculty &&
		row.ParticipantName == p.ParticipantName &&
		row.TeamPlayers.Equal(p.TeamPlayers)
}

// verifyAbsent checks none of the given slots is still present.
func verifyAbsent(rows []query.Row, slots []model.Slot) error {
	for _, r := range rows {
		if slices.Contains(slots, r.Key()) {
			return fmt.Errorf("%w: slot %s/%d still present after delete", ErrVerification, r.GameID, r.Position)
		}
	}
	return nil
}
