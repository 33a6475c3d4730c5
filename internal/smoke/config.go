// Package smoke drives a running podium service end to end: it logs in,
// races placements into a handful of slots, checks the leaderboard and then
// removes what it wrote.
package smoke

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Defaults for the smoke run.
const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultGames     = 4
	DefaultPositions = 3
	DefaultRounds    = 5
	DefaultWorkers   = 8
	DefaultTimeout   = 10 * time.Second
)

// ErrInvalidConfig is returned for unusable run settings.
var ErrInvalidConfig = errors.New("invalid smoke config")

// Config holds the settings of one smoke run.
type Config struct {
	BaseURL    string        // service root, no trailing slash
	AccessCode string        // exchanged for an admin token
	Games      int           // how many catalog games to write into
	Positions  int           // positions per game
	Rounds     int           // competing writes per (game, position)
	Workers    int           // concurrent submitters
	Timeout    time.Duration // per request
	Keep       bool          // leave the written results in place
	Seed       uint64        // faculty picks; 0 means random
}

// Validate checks the run settings.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is empty", ErrInvalidConfig)
	case c.AccessCode == "":
		return fmt.Errorf("%w: access code is empty", ErrInvalidConfig)
	case c.Games <= 0, c.Positions <= 0, c.Rounds <= 0:
		return fmt.Errorf("%w: games, positions and rounds must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Placement is the body of POST /api/results.
type Placement struct {
	GameID          string       `json:"game_id"`
	Position        int          `json:"position"`
	ParticipantName string       `json:"participant_name,omitempty"`
	Faculty         string       `json:"faculty"`
	TeamPlayers     model.Roster `json:"team_players,omitzero"`
}

// Slot returns the (game, position) the placement targets.
func (p Placement) Slot() model.Slot {
	return model.Slot{GameID: p.GameID, Position: p.Position}
}

// Stats summarizes a run.
type Stats struct {
	PlacementsGenerated int
	PlacementsAccepted  int
	PlacementsThrottled int
	PlacementsFailed    int
	RowsVerified        int
	RowsDeleted         int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
