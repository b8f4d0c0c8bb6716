package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/infra/logging"
	"github.com/QuagHug/pet-service/internal/infra/redis"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.userUC.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "Name, email and a password of at least 6 characters are required", http.StatusBadRequest)
		case errors.Is(err, domain.ErrAlreadyExists):
			http.Error(w, "Email already registered", http.StatusConflict)
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("registration failed")
			http.Error(w, "Failed to register", http.StatusInternalServerError)
		}
		return
	}

	token, err := s.auth.Mint(user.ID)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.limiter != nil && req.Email != "" {
		ok, err := s.limiter.Allow(r.Context(), redis.LoginKey(req.Email), 10, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
			return
		}
	}

	user, err := s.userUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("login failed")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	token, err := s.auth.Mint(user.ID)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}

	user, err := s.userUC.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("profile lookup failed")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userPayload{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}

	m, err := s.membershipUC.Membership(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("membership lookup failed")
		http.Error(w, "Failed to load membership", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}
	ids, err := s.userUC.ListFavorites(r.Context(), userID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("favorites lookup failed")
		http.Error(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"favorites": ids})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}
	err := s.userUC.AddFavorite(r.Context(), userID, chi.URLParam(r, "providerID"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Provider not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrAlreadyFavorite):
			http.Error(w, "Already in favorites", http.StatusConflict)
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("add favorite failed")
			http.Error(w, "Failed to add favorite", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !sameUser(w, r, userID) {
		return
	}
	err := s.userUC.RemoveFavorite(r.Context(), userID, chi.URLParam(r, "providerID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFavorite) {
			http.Error(w, "Not in favorites", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("remove favorite failed")
		http.Error(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
