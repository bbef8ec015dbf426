package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyJoined   = errors.New("user already joined the room")
	ErrNotInRoom       = errors.New("user not in the room")
	ErrInvalidRoomName = errors.New("room name is required")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrBadCredentials     = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidDisplayName = errors.New("display name is required")

	ErrFileNotFound = errors.New("file not found")
	ErrNotUploader  = errors.New("only the uploader can delete a file")
	ErrNotCreator   = errors.New("only the creator can delete a room")

	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")

	ErrSignalTooLarge = errors.New("signal payload too large")
)
