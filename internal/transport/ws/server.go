package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type MemberSvc interface {
	RoomExists(ctx context.Context, roomID string) error
	IsMember(ctx context.Context, roomID string, userID int64) (bool, error)
	ListParticipants(ctx context.Context, roomID string) ([]domain.Participant, error)
	TouchHeartbeat(ctx context.Context, roomID string, userID int64) error
	LeaveRoom(ctx context.Context, roomID string, userID int64) error
}

type ChatSvc interface {
	Post(ctx context.Context, roomID string, userID int64, text string, replyTo *string) (*domain.Message, error)
}

type SignalSvc interface {
	Relay(ctx context.Context, roomID string, fromUserID int64, toUserID *int64, data json.RawMessage) (*domain.Signal, error)
}

type TokenVerifier interface {
	ParseAndValidate(token string) (int64, error)
}

type Server struct {
	upgrader  websocket.Upgrader
	hub       *Hub
	memberSvc MemberSvc
	chatSvc   ChatSvc
	signalSvc SignalSvc
	tokens    TokenVerifier

	pingEvery time.Duration
}

func NewServer(hub *Hub, member MemberSvc, chat ChatSvc, signal SignalSvc, tokens TokenVerifier, pingEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	return &Server{
		hub:       hub,
		memberSvc: member,
		chatSvc:   chat,
		signalSvc: signal,
		tokens:    tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: pingEvery,
	}
}

// WS endpoint: GET /ws/rooms/{id}?access_token=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	accessToken := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if accessToken == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	uid, err := s.tokens.ParseAndValidate(accessToken)
	if err != nil {
		http.Error(w, "invalid access_token", http.StatusUnauthorized)
		return
	}
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// Channel access mirrors the HTTP rules: only members of an existing
	// room may attach to room.<id>.
	if err := s.memberSvc.RoomExists(r.Context(), roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	member, err := s.memberSvc.IsMember(r.Context(), roomID, uid)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !member {
		http.Error(w, "not a room member", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	userIDStr := strconv.FormatInt(uid, 10)
	c := newWsConn(conn, roomID, uid)
	s.hub.Add(c)
	metrics.WsConnections.Inc()

	if err := s.sendState(r.Context(), c); err != nil {
		slog.Warn("ws send initial state failed", "room", roomID, "user", uid, "err", err)
	}

	s.hub.Broadcast(roomID, Message{
		Type: TypePeerJoined,
		Payload: PeerEventPayload{
			RoomID: roomID,
			UserID: userIDStr,
		},
	})

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.hub.Remove(c)
	metrics.WsConnections.Dec()

	if err := s.memberSvc.LeaveRoom(r.Context(), roomID, uid); err != nil {
		slog.Debug("ws leave room failed", "room", roomID, "user", uid, "err", err)
	}
	s.hub.Broadcast(roomID, Message{
		Type: TypePeerLeft,
		Payload: PeerEventPayload{
			RoomID: roomID,
			UserID: userIDStr,
		},
	})

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", roomID, "user", uid, "err", err)
	}
}

func (s *Server) sendState(ctx context.Context, c *wsConn) error {
	parts, err := s.memberSvc.ListParticipants(ctx, c.roomID)
	if err != nil {
		return err
	}
	items := make([]ParticipantStateItem, 0, len(parts))
	for _, p := range parts {
		items = append(items, ParticipantStateItem{
			UserID:   strconv.FormatInt(p.UserID, 10),
			JoinedAt: p.JoinedAt.Unix(),
			LastSeen: p.LastSeen.Unix(),
		})
	}

	return c.Send(Message{
		Channel: ChannelName(c.roomID),
		Type:    TypeState,
		Payload: StatePayload{
			RoomID:       c.roomID,
			Participants: items,
		},
	})
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()
	idStr := strconv.FormatInt(c.userID, 10)

	_ = s.memberSvc.TouchHeartbeat(ctx, c.roomID, c.userID)

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		_ = s.memberSvc.TouchHeartbeat(ctx, c.roomID, c.userID)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeChat:
			s.handleChat(ctx, c, idStr, msg.Payload)
		case TypeRTCSignal:
			s.handleSignal(ctx, c, idStr, msg.Payload)
		default:
			// ignore
		}
	}
}

func (s *Server) handleChat(ctx context.Context, c *wsConn, idStr string, payload interface{}) {
	var p ChatPayload
	if decode(payload, &p) != nil {
		return
	}
	text := strings.TrimSpace(p.Message)
	if text == "" {
		return
	}

	m, err := s.chatSvc.Post(ctx, c.roomID, c.userID, text, p.ReplyTo)
	if err != nil {
		slog.Warn("ws chat post failed", "room", c.roomID, "user", c.userID, "err", err)
		return
	}

	// One broadcast to everyone, sender included; the ack below is what
	// clears the sender's pending entry.
	s.hub.Broadcast(c.roomID, Message{Type: TypeChat, Payload: ChatPayload{
		RoomID:  c.roomID,
		UserID:  idStr,
		Message: m.Text,
		ReplyTo: m.ReplyTo,
		MsgID:   m.ID,
		TSUnix:  m.CreatedAt.Unix(),
	}})
	metrics.MessagesTotal.Inc()

	_ = c.Send(Message{
		Channel: ChannelName(c.roomID),
		Type:    TypeChatAck,
		Payload: ChatAckPayload{MsgID: m.ID},
	})
}

func (s *Server) handleSignal(ctx context.Context, c *wsConn, idStr string, payload interface{}) {
	var p SignalPayload
	if decode(payload, &p) != nil {
		return
	}

	var to *int64
	if p.ToUserID != "" {
		n, err := strconv.ParseInt(p.ToUserID, 10, 64)
		if err != nil {
			return
		}
		to = &n
	}

	sig, err := s.signalSvc.Relay(ctx, c.roomID, c.userID, to, p.Data)
	if err != nil {
		slog.Debug("ws signal rejected", "room", c.roomID, "user", c.userID, "err", err)
		return
	}

	Deliver(s.hub, sig)
	metrics.SignalsTotal.Inc()
}

// Sender is the subset of the hub the signal fan-out needs.
type Sender interface {
	BroadcastExcept(roomID, exceptUserID string, msg Message)
	SendToUser(roomID, userID string, msg Message) bool
}

// Deliver fans a validated signal out on the room channel: targeted to one
// user when addressed, to everyone but the sender otherwise.
func Deliver(hub Sender, sig *domain.Signal) {
	fromStr := strconv.FormatInt(sig.FromUserID, 10)
	out := SignalPayload{
		RoomID:     sig.RoomID,
		FromUserID: fromStr,
		Data:       sig.Data,
	}
	msg := Message{Type: TypeRTCSignal, Payload: out}

	if sig.ToUserID != nil {
		toStr := strconv.FormatInt(*sig.ToUserID, 10)
		out.ToUserID = toStr
		msg.Payload = out
		if !hub.SendToUser(sig.RoomID, toStr, msg) {
			slog.Debug("signal target not connected", "room", sig.RoomID, "to", toStr)
		}
		return
	}

	hub.BroadcastExcept(sig.RoomID, fromStr, msg)
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			_ = s.memberSvc.TouchHeartbeat(ctx, c.roomID, c.userID)
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	conn   *websocket.Conn
	roomID string
	userID int64
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, roomID string, userID int64) *wsConn {
	return &wsConn{
		conn:   c,
		roomID: roomID,
		userID: userID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() string { return strconv.FormatInt(c.userID, 10) }
func (c *wsConn) RoomID() string { return c.roomID }
