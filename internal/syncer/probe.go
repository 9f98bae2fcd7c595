package syncer

import (
	"context"
	"fmt"
	"time"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
)

// DefaultReadyInterval is the pause between health probes when none is
// configured.
const DefaultReadyInterval = 2 * time.Second

// WaitForReady polls the target's health route until it responds or the
// deadline elapses. Individual probe failures (connection refused, timeout,
// non-2xx) are retried, not surfaced. A non-positive deadline means the
// target is assumed ready and no probe is issued.
func WaitForReady(ctx context.Context, api API, deadline, interval time.Duration, log logger.Logger) error {
	if deadline <= 0 {
		return nil
	}
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	deadlineAt := time.Now().Add(deadline)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		err := api.Health(ctx)
		if err == nil {
			log.Infof("Target ready after %d probe attempt(s)", attempt)
			return nil
		}
		log.Debugf("Probe %d failed: %v", attempt, err)

		if !time.Now().Add(interval).Before(deadlineAt) {
			return fmt.Errorf("after %s (%d probe attempts): %w",
				deadline, attempt, syncerrors.ErrTargetNotReady)
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
