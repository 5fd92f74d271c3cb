package engine

import (
	"context"
	"time"
)

// Clock allows deterministic pacing control in tests and tools.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pace sleeps the candle-timestamp delta scaled by speed. Speed 0
// disables pacing (backtest); speed 1 replays in wall-clock time
// (paper trading).
func (e *Engine) pace(ctx context.Context, currentTS int64, prevTS *int64) error {
	if e.cfg.Speed <= 0 || currentTS <= 0 {
		return nil
	}
	if *prevTS > 0 {
		delta := currentTS - *prevTS
		if delta > 0 {
			sleep := time.Duration(float64(delta)/e.cfg.Speed) * time.Millisecond
			if err := e.clock.Sleep(ctx, sleep); err != nil {
				return err
			}
		}
	}
	*prevTS = currentTS
	return nil
}
