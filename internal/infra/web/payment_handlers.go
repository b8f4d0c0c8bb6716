package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/infra/logging"
	"github.com/QuagHug/pet-service/internal/infra/momo"
	"github.com/QuagHug/pet-service/internal/infra/redis"
	"github.com/QuagHug/pet-service/internal/usecase"
)

const maxCallbackBody = 1 << 20 // 1 MiB

func (s *Server) handleMomoInitiate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !sameUser(w, r, userID) {
		return
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), redis.PaymentInitKey(userID), 5, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			http.Error(w, "Too many payment attempts", http.StatusTooManyRequests)
			return
		}
	}

	payURL, order, err := s.membershipUC.Initiate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("payment initiation failed")
		http.Error(w, "Failed to initiate payment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payUrl":    payURL,
		"orderId":   order.OrderID,
		"requestId": order.RequestID,
		"amount":    order.Amount,
	})
}

// handleMomoNotify is the server-to-server IPN leg. The contract with the
// provider: a 2xx stops redelivery, anything else triggers retries. So every
// outcome past basic payload validation is acknowledged with 200, including
// ones we reject internally.
func (s *Server) handleMomoNotify(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var n momo.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if n.PartnerCode == "" || n.OrderID == "" || n.TransID.String() == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if !s.momoVer.VerifyCallback(&n) {
		// Unauthenticated payload. Acknowledged so the sender stops
		// retrying; nothing is applied.
		log.Warn().Str("order_id", n.OrderID).Msg("notify signature mismatch")
		writeJSON(w, http.StatusOK, map[string]interface{}{"resultCode": 0, "message": "success"})
		return
	}

	if err := s.applyMomoNotification(r, &n); err != nil {
		log.Warn().Err(err).Str("order_id", n.OrderID).Msg("notify not applied")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"resultCode": 0, "message": "success"})
}

// handleMomoResult is the browser return leg. It only reports the outcome
// and forwards the user to the client app; entitlement changes come from
// the IPN alone. The client re-fetches membership after landing.
func (s *Server) handleMomoResult(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)
	n := momo.NotificationFromQuery(r.URL.Query())

	if n.OrderID == "" || !s.momoVer.VerifyCallback(n) {
		log.Warn().Str("order_id", n.OrderID).Msg("result signature mismatch")
		q := url.Values{}
		q.Set("status", "error")
		q.Set("message", "Error processing payment result")
		http.Redirect(w, r, s.clientBaseURL+"/payment/result?"+q.Encode(), http.StatusFound)
		return
	}

	// The decode is tolerant here. A broken token only blanks the userId
	// query parameter, the redirect itself still happens.
	userID, _ := momo.DecodeExtraData(n.ExtraData)

	q := url.Values{}
	q.Set("orderId", n.OrderID)
	q.Set("transId", n.TransID.String())
	q.Set("userId", userID)
	if n.Succeeded() {
		q.Set("type", "premium")
		http.Redirect(w, r, s.clientBaseURL+"/payment/success?"+q.Encode(), http.StatusFound)
		return
	}
	q.Set("status", "failure")
	q.Set("message", n.Message)
	http.Redirect(w, r, s.clientBaseURL+"/payment/result?"+q.Encode(), http.StatusFound)
}

func (s *Server) applyMomoNotification(r *http.Request, n *momo.Notification) error {
	amount, err := n.Amount.Int64()
	if err != nil {
		return domain.ErrInvalidArgument
	}
	return s.membershipUC.ApplyNotification(r.Context(), usecase.PaymentNotification{
		Provider:     "momo",
		OrderID:      n.OrderID,
		RequestID:    n.RequestID,
		TransID:      n.TransID.String(),
		Amount:       amount,
		Succeeded:    n.Succeeded(),
		Message:      n.Message,
		OrderInfo:    n.OrderInfo,
		OrderType:    n.OrderType,
		PayType:      n.PayType,
		ResponseTime: n.ResponseTime.String(),
		ExtraData:    n.ExtraData,
	})
}

func (s *Server) handleMomoStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	res, err := s.membershipUC.CheckStatus(r.Context(), AuthedUserID(r.Context()), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("status query failed")
			http.Error(w, "Failed to query status", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStripeCheckout(w http.ResponseWriter, r *http.Request) {
	if s.stripeVer == nil {
		http.Error(w, "Card payments not configured", http.StatusServiceUnavailable)
		return
	}
	payURL, err := s.membershipUC.InitiateCard(r.Context(), AuthedUserID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("checkout initiation failed")
		http.Error(w, "Failed to create checkout", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": payURL})
}

// handleStripeWebhook differs from the MoMo leg: Stripe retries on any
// non-2xx, so transient errors return 500 on purpose and permanent
// rejections return 400.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if s.stripeVer == nil {
		http.Error(w, "Card payments not configured", http.StatusServiceUnavailable)
		return
	}
	log := logging.With(r.Context(), s.log)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cs, err := s.stripeVer.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("stripe webhook rejected")
		http.Error(w, "Invalid webhook", http.StatusBadRequest)
		return
	}
	if cs == nil || !cs.Paid {
		// Either an event type we do not handle or an unpaid session.
		w.WriteHeader(http.StatusOK)
		return
	}

	err = s.membershipUC.ApplyNotification(r.Context(), usecase.PaymentNotification{
		Provider:  "stripe",
		OrderID:   cs.SessionID,
		TransID:   cs.PaymentIntentID,
		Amount:    cs.AmountTotal,
		Succeeded: true,
		UserID:    cs.UserID,
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrBadExtraData):
		log.Warn().Err(err).Str("session_id", cs.SessionID).Msg("stripe webhook not applied")
		http.Error(w, "Rejected", http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("session_id", cs.SessionID).Msg("stripe webhook processing failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}
	records, err := s.membershipUC.History(r.Context(), userID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("history lookup failed")
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
