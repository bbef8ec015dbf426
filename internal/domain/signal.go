package domain

import "encoding/json"

// Signal is transient: it exists only for the duration of the relay
// through the room channel and is never persisted. Data is an opaque
// SDP offer/answer or ICE candidate produced by the browser.
type Signal struct {
	RoomID     string
	FromUserID int64
	ToUserID   *int64
	Data       json.RawMessage
}
