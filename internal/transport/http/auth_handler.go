package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/security"
)

func userItem(u *domain.User) UserItem {
	return UserItem{
		ID:          strconv.FormatInt(u.ID, 10),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	u, err := h.authSvc.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, userItem(u))
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "email already registered"})
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidDisplayName),
		errors.Is(err, security.ErrPasswordTooShort):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("handler.Register:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	u, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
			return
		}
		slog.Error("handler.Login:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.authSvc.TokenTTL().Seconds()),
		User:        userItem(u),
	})
}
