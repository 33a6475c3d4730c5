package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Placement is the input of a record operation.
type Placement struct {
	GameID          string
	Position        int
	ParticipantName string
	Faculty         string
	TeamPlayers     model.Roster
}

// Normalize trims the text fields.
func (p Placement) Normalize() Placement {
	p.GameID = strings.TrimSpace(p.GameID)
	p.Faculty = strings.TrimSpace(p.Faculty)
	p.ParticipantName = strings.TrimSpace(p.ParticipantName)
	p.TeamPlayers = p.TeamPlayers.Normalize()
	return p
}

// Validate checks the required fields.
func (p Placement) Validate() error {
	switch {
	case strings.TrimSpace(p.GameID) == "":
		return fmt.Errorf("%w: missing game_id", ErrValidation)
	case strings.TrimSpace(p.Faculty) == "":
		return fmt.Errorf("%w: missing faculty", ErrValidation)
	case p.Position < 1:
		return fmt.Errorf("%w: position must be a positive integer", ErrValidation)
	}
	return nil
}

// ParsePosition converts the textual form of a position into a rank.
// Only base-10 positive integers are accepted.
func ParsePosition(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing position", ErrValidation)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: position %q is not a positive integer", ErrValidation, raw)
	}
	return n, nil
}
