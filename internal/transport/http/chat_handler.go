package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/metrics"
	httpmw "github.com/meetgrid/meet-service/internal/transport/http/middleware"
	"github.com/meetgrid/meet-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
)

func messageItem(m *domain.Message) MessageItem {
	return MessageItem{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    strconv.FormatInt(m.UserID, 10),
		Text:      m.Text,
		ReplyTo:   m.ReplyTo,
		CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
	}
}

// GET /rooms/{id}/messages?after=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.chatSvc.History(r.Context(), roomID, after, limit)
	if err != nil {
		slog.Error("handler.GetMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := MessagesResponse{Items: make([]MessageItem, 0, len(items)), NextCursor: next}
	for i := range items {
		resp.Items = append(resp.Items, messageItem(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/messages
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	m, err := h.chatSvc.Post(r.Context(), roomID, userID, req.Text, req.ReplyTo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrNotInRoom):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "user not in room"})
		default:
			slog.Error("handler.PostMessage:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	h.hub.Broadcast(roomID, ws.Message{Type: ws.TypeChat, Payload: ws.ChatPayload{
		RoomID:  m.RoomID,
		UserID:  strconv.FormatInt(m.UserID, 10),
		Message: m.Text,
		ReplyTo: m.ReplyTo,
		MsgID:   m.ID,
		TSUnix:  m.CreatedAt.Unix(),
	}})
	metrics.MessagesTotal.Inc()

	writeJSON(w, http.StatusCreated, messageItem(m))
}
