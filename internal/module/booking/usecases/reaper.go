package usecases

import (
	"context"
	"time"

	"ticketing-service/internal/module/booking/models/response"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/observability"

	"github.com/go-redsync/redsync/v4"
	"go.elastic.co/apm"
)

const sweepMutexName = "booking:reaper:sweep"

// SweepStaleReservations implements Usecases. A distributed mutex keeps the
// sweep single-flight across replicas; a replica that cannot take the lock
// reports a skip instead of an error. Per-row correctness does not depend
// on the lock, the database transaction with SKIP LOCKED carries that.
func (u *usecases) SweepStaleReservations(ctx context.Context) (response.SweepResult, error) {
	span, ctx := apm.StartSpan(ctx, "reaper.Sweep", "app")
	defer span.End()

	mutex := u.rds.NewMutex(sweepMutexName, redsync.WithExpiry(u.cfgReservation.SweepInterval), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		u.log.Info(ctx, "sweep already running elsewhere, skipping", err)
		return response.SweepResult{Skipped: true}, nil
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			u.log.Error(ctx, "error releasing sweep mutex", err)
		}
	}()

	released, err := u.repo.SweepExpiredReservations(ctx, time.Now().UTC())
	if err != nil {
		return response.SweepResult{}, errors.InternalServerError("error sweeping stale reservations")
	}

	if released > 0 {
		observability.TrackReapedReservations(released)
		u.log.Info(ctx, "released stale reservations", released)
	}

	return response.SweepResult{ReleasedCount: released}, nil
}
