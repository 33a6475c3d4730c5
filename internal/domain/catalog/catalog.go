// Package catalog holds the fixed reference lists of games and faculties.
//
// A Catalog is immutable once built; every accessor returns a fresh copy so
// callers may sort or modify the result freely.
package catalog

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog is the read-only set of games and faculties.
type Catalog struct {
	games     []model.Game
	faculties []string
	byID      map[string]int
	faculty   map[string]struct{}
}

// New builds a Catalog from the given lists. Duplicate game ids keep the
// first occurrence.
func New(games []model.Game, faculties []string) *Catalog {
	c := &Catalog{
		games:     make([]model.Game, 0, len(games)),
		faculties: append([]string(nil), faculties...),
		byID:      make(map[string]int, len(games)),
		faculty:   make(map[string]struct{}, len(faculties)),
	}
	for _, g := range games {
		if _, dup := c.byID[g.ID]; dup {
			continue
		}
		c.byID[g.ID] = len(c.games)
		c.games = append(c.games, g)
	}
	for _, f := range faculties {
		c.faculty[f] = struct{}{}
	}
	return c
}

// Games returns all games sorted by display name.
func (c *Catalog) Games() []model.Game {
	out := append([]model.Game(nil), c.games...)
	SortGames(out)
	return out
}

// Faculties returns all faculties in ascending order.
func (c *Catalog) Faculties() []string {
	out := append([]string(nil), c.faculties...)
	sort.Strings(out)
	return out
}

// Game looks up a game by id.
func (c *Catalog) Game(id string) (model.Game, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Game{}, false
	}
	return c.games[i], true
}

// HasFaculty reports whether name is one of the known faculties.
func (c *Catalog) HasFaculty(name string) bool {
	_, ok := c.faculty[name]
	return ok
}

// Len returns the number of games.
func (c *Catalog) Len() int { return len(c.games) }

// Snapshot returns the catalog lists in their stored order, ready to persist.
func (c *Catalog) Snapshot() ([]model.Game, []string) {
	return append([]model.Game(nil), c.games...), append([]string(nil), c.faculties...)
}

// NameOrder returns a comparison function for display names using the root
// locale collation. The function is not safe for concurrent use.
func NameOrder() func(a, b string) int {
	col := collate.New(language.Und)
	return col.CompareString
}

// SortGames sorts games in place by display name.
func SortGames(games []model.Game) {
	cmp := NameOrder()
	sort.SliceStable(games, func(i, j int) bool {
		return cmp(games[i].Name, games[j].Name) < 0
	})
}
