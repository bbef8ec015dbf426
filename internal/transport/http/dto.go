package http

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// --- auth ---

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserItem struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserItem `json:"user"`
}

// --- rooms ---

type CreateRoomRequest struct {
	Name string `json:"name"`
	Max  int64  `json:"max"`
}

type RoomItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	MaxParticipants int64     `json:"max_participants"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	Channel         string    `json:"channel"`
}

type RoomsListResponse struct {
	Items      []RoomItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type JoinRoomResponse struct {
	RoomID string `json:"room_id"`
	PeerID string `json:"peer_id"`
}

type ParticipantItem struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
	LastSeen    time.Time `json:"last_seen"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

// --- messages ---

type PostMessageRequest struct {
	Text    string  `json:"text"`
	ReplyTo *string `json:"reply_to,omitempty"`
}

type MessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	ReplyTo   *string   `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// --- files ---

type FileItem struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	UserID       string    `json:"user_id"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

type FilesResponse struct {
	Items      []FileItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// --- signaling ---

type SignalRequest struct {
	ToUserID string          `json:"to_user_id,omitempty"`
	Data     json.RawMessage `json:"data"`
}
