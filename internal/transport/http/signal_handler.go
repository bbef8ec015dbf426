package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/metrics"
	httpmw "github.com/meetgrid/meet-service/internal/transport/http/middleware"
	"github.com/meetgrid/meet-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
)

// POST /rooms/{id}/signal
//
// Accepts a locally produced SDP/ICE payload and re-broadcasts it
// unchanged on the room channel. The sender is excluded; a targeted
// payload goes only to to_user_id. Nothing is stored and nothing is
// retried: delivery is whatever the channel gives us.
func (h *Handler) PostSignal(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if len(req.Data) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing signal data"})
		return
	}

	var to *int64
	if req.ToUserID != "" {
		n, err := strconv.ParseInt(req.ToUserID, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid to_user_id"})
			return
		}
		to = &n
	}

	sig, err := h.signalSvc.Relay(r.Context(), roomID, userID, to, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrNotInRoom):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "user not in room"})
		case errors.Is(err, domain.ErrSignalTooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "signal payload too large"})
		default:
			slog.Error("handler.PostSignal:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	ws.Deliver(h.hub, sig)
	metrics.SignalsTotal.Inc()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "relayed"})
}
