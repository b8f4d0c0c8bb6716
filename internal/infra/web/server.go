package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/infra/momo"
	"github.com/QuagHug/pet-service/internal/infra/stripecheckout"
	"github.com/QuagHug/pet-service/internal/usecase"
)

// MomoVerifier authenticates inbound MoMo callbacks.
type MomoVerifier interface {
	VerifyCallback(n *momo.Notification) bool
}

// StripeVerifier authenticates inbound Stripe webhook events.
type StripeVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (*stripecheckout.CompletedSession, error)
}

type Server struct {
	membershipUC usecase.MembershipUseCase
	userUC       usecase.UserUseCase
	directoryUC  usecase.DirectoryUseCase

	auth    *AuthManager
	momoVer MomoVerifier
	// stripeVer is nil when the card path is not configured.
	stripeVer StripeVerifier
	limiter   adapter.RateLimiter

	clientBaseURL string
	log           *zerolog.Logger
}

func NewServer(
	membershipUC usecase.MembershipUseCase,
	userUC usecase.UserUseCase,
	directoryUC usecase.DirectoryUseCase,
	auth *AuthManager,
	momoVer MomoVerifier,
	stripeVer StripeVerifier,
	limiter adapter.RateLimiter,
	clientBaseURL string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		membershipUC:  membershipUC,
		userUC:        userUC,
		directoryUC:   directoryUC,
		auth:          auth,
		momoVer:       momoVer,
		stripeVer:     stripeVer,
		limiter:       limiter,
		clientBaseURL: clientBaseURL,
		log:           &srvLog,
	}
}

// Router builds the full route table. Callback endpoints are deliberately
// outside the auth group; the provider cannot carry a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Post("/payment/momo/notify", s.handleMomoNotify)
		r.Get("/payment/momo/result", s.handleMomoResult)
		r.Post("/payment/stripe/webhook", s.handleStripeWebhook)

		r.Get("/providers", s.handleListProviders)
		r.Get("/providers/search", s.handleSearchProviders)
		r.Get("/providers/nearby", s.handleNearbyProviders)
		r.Get("/providers/category/{category}", s.handleProvidersByCategory)
		r.Get("/providers/{id}", s.handleGetProvider)
		r.Get("/providers/{id}/reviews", s.handleListReviews)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Post("/payment/momo/{userID}", s.handleMomoInitiate)
			r.Get("/payment/momo/status/{orderID}", s.handleMomoStatus)
			r.Post("/payment/stripe/checkout", s.handleStripeCheckout)

			r.Get("/users/{id}", s.handleGetProfile)
			r.Get("/users/{id}/membership", s.handleGetMembership)
			r.Get("/users/{id}/payments", s.handlePaymentHistory)
			r.Get("/users/{id}/favorites", s.handleListFavorites)
			r.Post("/users/{id}/favorites/{providerID}", s.handleAddFavorite)
			r.Delete("/users/{id}/favorites/{providerID}", s.handleRemoveFavorite)

			r.Post("/providers/{id}/reviews", s.handleAddReview)
			r.Post("/providers/{id}/click", s.handleProviderClick)
		})
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log), Timeout(30*time.Second))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sameUser enforces that the path user id matches the token subject.
func sameUser(w http.ResponseWriter, r *http.Request, pathUserID string) bool {
	if AuthedUserID(r.Context()) != pathUserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
