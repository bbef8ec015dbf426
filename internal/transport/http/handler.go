package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/postgres"
	"github.com/meetgrid/meet-service/internal/service"
	httpmw "github.com/meetgrid/meet-service/internal/transport/http/middleware"
	"github.com/meetgrid/meet-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
)

// Broadcaster is the room-channel fan-out port, satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(roomID string, msg ws.Message)
	BroadcastExcept(roomID, exceptUserID string, msg ws.Message)
	SendToUser(roomID, userID string, msg ws.Message) bool
}

type Handler struct {
	authSvc   *service.AuthService
	roomSvc   *service.RoomService
	memberSvc *service.MemberService
	chatSvc   *service.ChatService
	fileSvc   *service.FileService
	signalSvc *service.SignalService
	hub       Broadcaster

	maxUploadBytes int64
}

func NewHandler(
	auth *service.AuthService,
	room *service.RoomService,
	member *service.MemberService,
	chat *service.ChatService,
	file *service.FileService,
	signal *service.SignalService,
	hub Broadcaster,
	maxUploadBytes int64,
) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &Handler{
		authSvc:        auth,
		roomSvc:        room,
		memberSvc:      member,
		chatSvc:        chat,
		fileSvc:        file,
		signalSvc:      signal,
		hub:            hub,
		maxUploadBytes: maxUploadBytes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func roomItem(r *domain.Room) RoomItem {
	return RoomItem{
		ID:              r.ID,
		Name:            r.Name,
		MaxParticipants: r.MaxParticipants,
		CreatedBy:       strconv.FormatInt(r.CreatedBy, 10),
		CreatedAt:       r.CreatedAt,
		Channel:         r.Channel(),
	}
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), req.Name, req.Max, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRoomName) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, roomItem(room))
}

// GET /rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.roomSvc.ListRooms(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ListRooms:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms)), NextCursor: next}
	for i := range rooms {
		resp.Items = append(resp.Items, roomItem(&rooms[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.roomSvc.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, roomItem(room))
}

// DELETE /rooms/{id}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	err := h.roomSvc.DeleteRoom(r.Context(), id, userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
	case errors.Is(err, domain.ErrNotCreator):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "only the creator can delete a room"})
	default:
		slog.Error("handler.DeleteRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// POST /rooms/{id}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	_, err := h.memberSvc.JoinRoom(r.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		case errors.Is(err, domain.ErrRoomFull):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "room full"})
			return
		case errors.Is(err, domain.ErrAlreadyJoined):
			// join is idempotent
		default:
			slog.Error("handler.JoinRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		RoomID: roomID,
		PeerID: strconv.FormatInt(userID, 10),
	})
}

// POST /rooms/{id}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	err := h.memberSvc.LeaveRoom(r.Context(), roomID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotInRoom) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not in room"})
			return
		}
		slog.Error("handler.LeaveRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// GET /rooms/{id}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	items, err := h.memberSvc.ListParticipantsDetailed(r.Context(), roomID)
	if err != nil {
		slog.Error("handler.GetParticipants:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ParticipantsResponse{Items: make([]ParticipantItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, ParticipantItem{
			UserID:      strconv.FormatInt(it.UserID, 10),
			DisplayName: it.DisplayName,
			JoinedAt:    it.JoinedAt,
			LastSeen:    it.LastSeen,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
