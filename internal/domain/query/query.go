// Package query builds presentation views over the ledger and catalog.
package query

import (
	"sort"

	"github.com/okian/podium/internal/domain/catalog"
	"github.com/okian/podium/internal/domain/model"
)

// Row is a Result joined with the display fields of its game. The joined
// fields are omitted when the game is not in the catalog.
type Row struct {
	model.Result
	GameName string         `json:"game_name,omitempty"`
	GameIcon string         `json:"game_icon,omitempty"`
	GameType model.GameType `json:"game_type,omitempty"`
}

// GameLookup resolves games by id.
type GameLookup interface {
	Game(id string) (model.Game, bool)
}

// ResultLister returns the current ledger contents.
type ResultLister interface {
	List() []model.Result
}

// Service composes the catalog and the ledger. It never mutates either.
type Service struct {
	games   GameLookup
	results ResultLister
}

// New creates a query Service.
func New(games GameLookup, results ResultLister) *Service {
	return &Service{games: games, results: results}
}

// Leaderboard returns every result joined with its game, ordered by game
// name and then by position. It is computed on each call.
func (s *Service) Leaderboard() []Row {
	return Join(s.results.List(), s.games)
}

// Join left-joins results with games and sorts the rows.
func Join(results []model.Result, games GameLookup) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		row := Row{Result: r}
		if g, ok := games.Game(r.GameID); ok {
			row.GameName = g.Name
			row.GameIcon = g.Icon
			row.GameType = g.Type
		}
		rows = append(rows, row)
	}
	Sort(rows)
	return rows
}

// Sort orders rows by game name (locale-aware, unmatched first) and then by
// position.
func Sort(rows []Row) {
	cmp := catalog.NameOrder()
	sort.SliceStable(rows, func(i, j int) bool {
		if c := cmp(rows[i].GameName, rows[j].GameName); c != 0 {
			return c < 0
		}
		return rows[i].Position < rows[j].Position
	})
}
