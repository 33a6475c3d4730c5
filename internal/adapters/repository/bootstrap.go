package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Load outcomes reported by Bootstrap.
const (
	OutcomeLoaded    = "loaded"
	OutcomeDefaulted = "defaulted"
)

// Bootstrap loads the stored snapshot. When no usable snapshot exists it
// falls back to defaults and saves them immediately. A snapshot without a
// faculty list gets the default faculties and is saved back.
//
// Load failures never reach the caller; only a failed save of the healed
// state does.
func Bootstrap(ctx context.Context, gw Gateway, defaults model.State, log logger.Logger) (model.State, string, error) {
	if log == nil {
		log = logger.Get()
	}

	state, err := gw.Load(ctx)
	switch {
	case err == nil:
		if state.Faculties != nil {
			metrics.RecordSnapshotLoad(OutcomeLoaded)
			return state, OutcomeLoaded, nil
		}
		state.Faculties = append([]string(nil), defaults.Faculties...)
		log.Warn(ctx, "snapshot has no faculties, using defaults",
			logger.Int("faculties", len(state.Faculties)))
		if err := gw.Save(ctx, state); err != nil {
			return model.State{}, "", fmt.Errorf("save healed snapshot: %w", err)
		}
		metrics.RecordSnapshotLoad(OutcomeLoaded)
		return state, OutcomeLoaded, nil

	case ctx.Err() != nil:
		return model.State{}, "", ctx.Err()

	case errors.Is(err, ErrNoSnapshot):
		log.Info(ctx, "no snapshot found, seeding defaults")

	default:
		log.Warn(ctx, "snapshot unusable, seeding defaults", logger.Error(err))
		metrics.RecordErrorByComponent("repository", "load_failed")
	}

	state = defaults.Clone()
	if err := gw.Save(ctx, state); err != nil {
		return model.State{}, "", fmt.Errorf("save default snapshot: %w", err)
	}
	metrics.RecordSnapshotLoad(OutcomeDefaulted)
	return state, OutcomeDefaulted, nil
}
