package outbox

import (
	"context"
	"time"

	"github.com/Rubemlrm/jogging-tracker/internal/logging"
)

// Purger removes credentials that can no longer authenticate.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunJanitor purges expired sessions and revoked tokens every interval until ctx ends.
func RunJanitor(ctx context.Context, purger Purger, interval time.Duration) {
	log := logging.WithComponent("janitor")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := purger.PurgeExpired(ctx, time.Now().UTC())
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error().Err(err).Msg("purge expired credentials")
		case n > 0:
			purgedCounter.Add(float64(n))
			log.Debug().Int64("purged", n).Msg("purged expired credentials")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
