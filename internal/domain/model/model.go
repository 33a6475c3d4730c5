// Package model contains domain models passed between layers.
package model

import "time"

// GameType distinguishes solo competitions from team competitions.
type GameType string

// Known game types.
const (
	GameTypeIndividual GameType = "individual"
	GameTypeTeam       GameType = "team"
)

// Game is a catalog entry. Identity is ID; games never change after load.
type Game struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Icon string   `json:"icon"`
	Type GameType `json:"type"`
}

// Result is one recorded placement in the ledger.
// At most one Result exists per (GameID, Position).
type Result struct {
	ID              ResultID  `json:"id"`
	GameID          string    `json:"game_id"`
	Position        int       `json:"position"`
	ParticipantName string    `json:"participant_name,omitempty"`
	Faculty         string    `json:"faculty"`
	TeamPlayers     Roster    `json:"team_players,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
}

// Key returns the composite key that identifies the placement slot.
func (r Result) Key() Slot {
	return Slot{GameID: r.GameID, Position: r.Position}
}

// Slot is the (game, position) pair a Result occupies.
type Slot struct {
	GameID   string
	Position int
}

// State is the full persisted snapshot: catalog plus ledger.
type State struct {
	Games     []Game   `json:"games"`
	Faculties []string `json:"faculties"`
	Results   []Result `json:"results"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Games:     append([]Game(nil), s.Games...),
		Faculties: append([]string(nil), s.Faculties...),
		Results:   make([]Result, len(s.Results)),
	}
	for i, r := range s.Results {
		r.TeamPlayers = r.TeamPlayers.Clone()
		out.Results[i] = r
	}
	return out
}
