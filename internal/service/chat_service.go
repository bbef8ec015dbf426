package service

import (
	"context"
	"strings"

	"github.com/meetgrid/meet-service/internal/domain"
)

type ChatService struct {
	msgRepo         MessageRepo
	participantRepo ParticipantRepo

	maxMessageChars int
}

func NewChatService(msgRepo MessageRepo, participantRepo ParticipantRepo, maxMessageChars int) *ChatService {
	if maxMessageChars <= 0 {
		maxMessageChars = 4000
	}
	return &ChatService{
		msgRepo:         msgRepo,
		participantRepo: participantRepo,
		maxMessageChars: maxMessageChars,
	}
}

// Post stores a message authored by a room member. Messages are
// append-only; there is no edit or delete path.
func (s *ChatService) Post(ctx context.Context, roomID string, userID int64, text string, replyTo *string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(text) > s.maxMessageChars {
		return nil, domain.ErrMessageTooLong
	}

	member, err := s.participantRepo.Exists(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotInRoom
	}

	return s.msgRepo.Save(ctx, roomID, userID, text, replyTo)
}

func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	return s.msgRepo.History(ctx, roomID, after, limit)
}
