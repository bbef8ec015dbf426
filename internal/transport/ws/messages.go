package ws

import "encoding/json"

// Event types carried on a room channel.
const (
	TypeState        = "state"         // participant snapshot for a fresh connection
	TypePeerJoined   = "peer_joined"   // user connected to the channel
	TypePeerLeft     = "peer_left"     // user disconnected
	TypeChat         = "chat"          // new message
	TypeChatAck      = "chat_ack"      // delivery ack for the sender, not a message
	TypeFileUploaded = "file_uploaded" // new file metadata
	TypeRTCSignal    = "rtc_signal"    // opaque SDP/ICE payload relay
)

// ChannelName is the broadcast channel pattern for a room.
func ChannelName(roomID string) string { return "room." + roomID }

type Message struct {
	Channel string      `json:"channel,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatePayload struct {
	RoomID       string                 `json:"room_id"`
	Participants []ParticipantStateItem `json:"participants"`
}

type ParticipantStateItem struct {
	UserID   string `json:"user_id"`
	JoinedAt int64  `json:"joined_at_unix"`
	LastSeen int64  `json:"last_seen_unix"`
}

type PeerEventPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

type ChatPayload struct {
	RoomID  string  `json:"room_id"`
	UserID  string  `json:"user_id"`
	Message string  `json:"message"`
	ReplyTo *string `json:"reply_to,omitempty"`

	MsgID  string `json:"msg_id,omitempty"`
	TSUnix int64  `json:"ts_unix,omitempty"`
}

// ChatAckPayload lets the sender clear its pending state and dedupe.
type ChatAckPayload struct {
	MsgID string `json:"msg_id"`
}

type FileUploadedPayload struct {
	RoomID      string `json:"room_id"`
	FileID      string `json:"file_id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	TSUnix      int64  `json:"ts_unix"`
}

// SignalPayload carries connection-negotiation data between peers. Data is
// passed through unchanged.
type SignalPayload struct {
	RoomID     string          `json:"room_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id,omitempty"`
	Data       json.RawMessage `json:"data"`
}
