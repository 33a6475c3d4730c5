package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// Run executes a complete smoke run against cfg.BaseURL. The slots it
// writes into are overwritten and, unless cfg.Keep is set, deleted again.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("smoke")
	stats := &Stats{StartTime: time.Now()}
	runID := uuid.NewString()[:8]

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("run", runID),
		logger.Int("games", cfg.Games),
		logger.Int("positions", cfg.Positions),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers))

	c := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := c.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := c.Login(ctx, cfg.AccessCode); err != nil {
		return stats, fmt.Errorf("login failed: %w", err)
	}

	games, err := c.Games(ctx)
	if err != nil {
		return stats, fmt.Errorf("list games: %w", err)
	}
	faculties, err := c.Faculties(ctx)
	if err != nil {
		return stats, fmt.Errorf("list faculties: %w", err)
	}

	placements, err := generatePlacements(cfg, runID, games, faculties)
	if err != nil {
		return stats, fmt.Errorf("generate placements: %w", err)
	}
	stats.PlacementsGenerated = len(placements)

	submitPlacements(ctx, cfg, c, placements, stats)
	if stats.PlacementsFailed > 0 {
		return stats, fmt.Errorf("%d of %d placements failed", stats.PlacementsFailed, len(placements))
	}

	rows, err := c.Leaderboard(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if err := verifyOrder(rows); err != nil {
		return stats, err
	}
	if err := verifyUnique(rows); err != nil {
		return stats, err
	}
	if stats.RowsVerified, err = verifyWinners(rows, placements); err != nil {
		return stats, err
	}
	log.Info(ctx, "leaderboard verified", logger.Int("rows", len(rows)), logger.Int("slots", stats.RowsVerified))

	if !cfg.Keep {
		if err := cleanup(ctx, c, placements, stats); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// cleanup deletes every written slot twice, checking the second delete is a
// harmless no-op, and confirms the slots are gone.
func cleanup(ctx context.Context, c *Client, placements []Placement, stats *Stats) error {
	seen := make(map[model.Slot]struct{})
	var slots []model.Slot
	for _, p := range placements {
		if _, ok := seen[p.Slot()]; ok {
			continue
		}
		seen[p.Slot()] = struct{}{}
		slots = append(slots, p.Slot())
	}

	for _, s := range slots {
		for range 2 {
			if err := c.Delete(ctx, s.GameID, s.Position); err != nil {
				return fmt.Errorf("delete %s/%d: %w", s.GameID, s.Position, err)
			}
		}
		stats.RowsDeleted++
	}

	rows, err := c.Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("fetch leaderboard after cleanup: %w", err)
	}
	return verifyAbsent(rows, slots)
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.PlacementsAccepted) / stats.Duration.Seconds()
	}
	logger.Get().Named("smoke").Info(ctx, "final statistics",
		logger.Int("placementsGenerated", stats.PlacementsGenerated),
		logger.Int("placementsAccepted", stats.PlacementsAccepted),
		logger.Int("placementsThrottled", stats.PlacementsThrottled),
		logger.Int("placementsFailed", stats.PlacementsFailed),
		logger.Int("slotsVerified", stats.RowsVerified),
		logger.Int("slotsDeleted", stats.RowsDeleted),
		logger.Duration("duration", stats.Duration),
		logger.Float64("placementsPerSecond", perSecond))
}
