package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/infra/metrics"
	"github.com/QuagHug/pet-service/internal/usecase"
)

const expiryLockKey = "sched:membership_expiry"

// ExpiryWorker periodically finishes expired memberships via the use case.
// Expiry is also reconciled lazily on read; this sweep only bounds how long
// an overdue row can stay marked active.
type ExpiryWorker struct {
	interval time.Duration
	uc       usecase.MembershipUseCase
	locker   adapter.Locker
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, uc usecase.MembershipUseCase, locker adapter.Locker, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		uc:       uc,
		locker:   locker,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	if w.locker != nil {
		release, ok, err := w.locker.Acquire(ctx, expiryLockKey, w.interval)
		if err != nil {
			w.log.Warn().Err(err).Msg("expiry lock unavailable, running unguarded")
		} else if !ok {
			return // another replica holds the sweep
		} else {
			defer release()
		}
	}

	n, err := w.uc.FinishExpired(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry worker error")
		return
	}
	if n > 0 {
		metrics.IncMembershipsExpired(n)
		w.log.Info().Int("count", n).Msg("expired memberships finished")
	}
}
