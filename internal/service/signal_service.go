package service

import (
	"context"
	"encoding/json"

	"github.com/meetgrid/meet-service/internal/domain"
)

// SignalService validates a signaling payload and hands it back for relay.
// Payloads are opaque SDP/ICE JSON produced by the browser; nothing here
// inspects or persists them, and there is no retry or ordering on top of
// what the channel delivers.
type SignalService struct {
	roomRepo        RoomRepo
	participantRepo ParticipantRepo

	maxPayloadBytes int64
}

func NewSignalService(roomRepo RoomRepo, participantRepo ParticipantRepo, maxPayloadBytes int64) *SignalService {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = 64 << 10
	}
	return &SignalService{
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		maxPayloadBytes: maxPayloadBytes,
	}
}

func (s *SignalService) Relay(ctx context.Context, roomID string, fromUserID int64, toUserID *int64, data json.RawMessage) (*domain.Signal, error) {
	if int64(len(data)) > s.maxPayloadBytes {
		return nil, domain.ErrSignalTooLarge
	}

	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return nil, err
	}

	member, err := s.participantRepo.Exists(ctx, roomID, fromUserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotInRoom
	}

	if toUserID != nil {
		target, err := s.participantRepo.Exists(ctx, roomID, *toUserID)
		if err != nil {
			return nil, err
		}
		if !target {
			return nil, domain.ErrNotInRoom
		}
	}

	return &domain.Signal{
		RoomID:     roomID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Data:       data,
	}, nil
}
