package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/meetgrid/meet-service/internal/domain"
)

type RoomService struct {
	roomRepo RoomRepo
}

func NewRoomService(roomRepo RoomRepo) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

// CreateRoom creates a room owned by createdBy with a participant cap.
func (s *RoomService) CreateRoom(ctx context.Context, name string, max int64, createdBy int64) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRoomName
	}
	if max <= 0 || max > 10 {
		max = 10
	}

	room := &domain.Room{
		Name:            name,
		MaxParticipants: max,
		CreatedBy:       createdBy,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	return room, nil
}

// GetRoom returns the room by ID.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms returns rooms with cursor pagination.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	rooms, nextCursor, err := s.roomRepo.List(ctx, limit, cursor)
	if err != nil {
		return nil, "", err
	}
	return rooms, nextCursor, nil
}

// DeleteRoom removes the room; only its creator may do so. Messages,
// participants and file rows go with it via cascade.
func (s *RoomService) DeleteRoom(ctx context.Context, id string, userID int64) error {
	room, err := s.roomRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if room.CreatedBy != userID {
		return domain.ErrNotCreator
	}
	return s.roomRepo.Delete(ctx, id)
}
