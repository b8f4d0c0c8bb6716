package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/infra/logging"
)

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.directoryUC.ListProviders(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("provider list failed")
		http.Error(w, "Failed to load providers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	p, err := s.directoryUC.GetProvider(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Provider not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("provider lookup failed")
		http.Error(w, "Failed to load provider", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProvidersByCategory(w http.ResponseWriter, r *http.Request) {
	providers, err := s.directoryUC.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("category list failed")
		http.Error(w, "Failed to load providers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleSearchProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providers, err := s.directoryUC.Search(r.Context(), q.Get("q"), q.Get("category"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("provider search failed")
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleNearbyProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	radius, _ := strconv.Atoi(q.Get("radius"))

	providers, err := s.directoryUC.Nearby(r.Context(), lat, lng, radius)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Coordinates out of range", http.StatusBadRequest)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("nearby search failed")
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := s.directoryUC.AddReview(r.Context(), chi.URLParam(r, "id"), AuthedUserID(r.Context()), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Provider not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("add review failed")
			http.Error(w, "Failed to add review", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.directoryUC.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Provider not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("review list failed")
		http.Error(w, "Failed to load reviews", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleProviderClick(w http.ResponseWriter, r *http.Request) {
	err := s.userUC.RecordClick(r.Context(), AuthedUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Provider not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("click tracking failed")
		http.Error(w, "Failed to record click", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
