package sched

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
	"github.com/QuagHug/pet-service/internal/usecase"
)

const reconcileLockKey = "sched:order_reconcile"

// OrderReconciler periodically scans for stale pending orders and asks the
// provider what happened to them. This covers the cases where the webhook
// was never delivered or the process crashed between redirect and notify.
type OrderReconciler struct {
	uc         usecase.MembershipUseCase
	orders     repository.PendingOrderRepository
	gateway    adapter.PaymentGateway
	locker     adapter.Locker
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending order must be to query
	log        *zerolog.Logger
}

func NewOrderReconciler(
	uc usecase.MembershipUseCase,
	orders repository.PendingOrderRepository,
	gateway adapter.PaymentGateway,
	locker adapter.Locker,
	interval, staleAfter time.Duration,
	logger *zerolog.Logger,
) *OrderReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	recLog := logger.With().Str("component", "OrderReconciler").Logger()
	return &OrderReconciler{
		uc:         uc,
		orders:     orders,
		gateway:    gateway,
		locker:     locker,
		interval:   interval,
		staleAfter: staleAfter,
		log:        &recLog,
	}
}

func (w *OrderReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting order reconciler")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping order reconciler")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

// Provider result codes that mean the payment is still in flight; the order
// stays pending and is retried on the next sweep.
func stillProcessing(code int) bool {
	switch code {
	case 1000, 7000, 7002, 9000:
		return true
	}
	return false
}

func (w *OrderReconciler) tick(ctx context.Context) {
	if w.locker != nil {
		release, ok, err := w.locker.Acquire(ctx, reconcileLockKey, w.interval)
		if err != nil {
			w.log.Warn().Err(err).Msg("reconcile lock unavailable, running unguarded")
		} else if !ok {
			return
		} else {
			defer release()
		}
	}

	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.orders.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list pending orders failed")
		return
	}

	for _, o := range pending {
		if o.Provider != w.gateway.Name() {
			continue
		}
		res, err := w.gateway.QueryStatus(ctx, o.OrderID)
		if err != nil {
			w.log.Warn().Err(err).Str("order_id", o.OrderID).Msg("status query failed")
			continue
		}
		if stillProcessing(res.ResultCode) {
			continue
		}

		n := usecase.PaymentNotification{
			Provider:  o.Provider,
			OrderID:   o.OrderID,
			RequestID: o.RequestID,
			TransID:   strconv.FormatInt(res.TransID, 10),
			Amount:    o.Amount,
			Succeeded: res.ResultCode == 0,
			Message:   res.Message,
			ExtraData: o.ExtraData,
		}
		if err := w.uc.ApplyNotification(ctx, n); err != nil {
			w.log.Warn().Err(err).Str("order_id", o.OrderID).Msg("reconcile apply failed")
			continue
		}
		w.log.Info().Str("order_id", o.OrderID).Int("result_code", res.ResultCode).Msg("order reconciled")
	}
}
