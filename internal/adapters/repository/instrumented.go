package repository

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// instrumented records save latency and failures for any Gateway.
type instrumented struct {
	Gateway
}

// Instrument wraps gw with snapshot metrics.
func Instrument(gw Gateway) Gateway {
	return instrumented{Gateway: gw}
}

func (i instrumented) Save(ctx context.Context, state model.State) error {
	start := time.Now()
	err := i.Gateway.Save(ctx, state)
	if err != nil {
		metrics.RecordSnapshotSaveError()
		metrics.RecordErrorByComponent("repository", "save_failed")
		return err
	}
	metrics.RecordSnapshotSave(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}
