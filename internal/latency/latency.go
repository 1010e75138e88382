// Package latency simulates the round trip of a remote call for the
// in-memory backends.
package latency

import (
	"context"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

// Wait blocks for d or until ctx is done. A cancelled context surfaces as
// errors.ErrNetwork, as a dropped connection would.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(errors.ErrNetwork, "%v", err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrapf(errors.ErrNetwork, "%v", ctx.Err())
	case <-timer.C:
		return nil
	}
}
