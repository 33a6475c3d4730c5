package smoke

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// generatePlacements builds Rounds competing placements for every
// (game, position) among the first cfg.Games games. Participant names carry
// runID so the run can tell its own rows apart.
func generatePlacements(cfg *Config, runID string, games []model.Game, faculties []string) ([]Placement, error) {
	if len(games) < cfg.Games {
		return nil, fmt.Errorf("catalog has %d games, run needs %d", len(games), cfg.Games)
	}
	if len(faculties) == 0 {
		return nil, fmt.Errorf("catalog has no faculties")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	out := make([]Placement, 0, cfg.Games*cfg.Positions*cfg.Rounds)
	for round := 1; round <= cfg.Rounds; round++ {
		for _, g := range games[:cfg.Games] {
			for pos := 1; pos <= cfg.Positions; pos++ {
				p := Placement{
					GameID:   g.ID,
					Position: pos,
					Faculty:  faculties[rng.IntN(len(faculties))],
				}
				name := fmt.Sprintf("%s-%s-%d-r%d", runID, g.ID, pos, round)
				if g.Type == model.GameTypeTeam {
					p.TeamPlayers = model.Players(name+"-a", name+"-b")
				} else {
					p.ParticipantName = name
				}
				out = append(out, p)
			}
		}
	}
	// Shuffle so rounds for one slot race each other.
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}
