package service

import (
	"context"
	"io"
	"time"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/postgres"
	"github.com/meetgrid/meet-service/internal/storage"
)

// Repository ports, satisfied by internal/postgres. Declared here so the
// services can be exercised against fakes.

type RoomRepo interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	Delete(ctx context.Context, id string) error
}

type ParticipantRepo interface {
	Exists(ctx context.Context, roomID string, userID int64) (bool, error)
	Join(ctx context.Context, p *domain.Participant, maxParticipants int64) error
	Leave(ctx context.Context, roomID string, userID int64) error
	ListByRoom(ctx context.Context, roomID string) ([]domain.Participant, error)
	TouchHeartbeat(ctx context.Context, roomID string, userID int64) error
	ListDetailed(ctx context.Context, roomID string, activeWithin time.Duration) ([]postgres.ParticipantDetailedRow, error)
}

type MessageRepo interface {
	Save(ctx context.Context, roomID string, userID int64, text string, replyTo *string) (*domain.Message, error)
	History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error)
}

type FileRepo interface {
	Save(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id string) (*domain.File, error)
	ListByRoom(ctx context.Context, roomID, after string, limit int) ([]domain.File, string, error)
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// BlobStore is the disk store port, satisfied by storage.Disk.
type BlobStore interface {
	Save(roomID, originalName string, src io.Reader) (*storage.SavedBlob, error)
	Open(relPath string) (io.ReadSeekCloser, error)
	Remove(relPath string) error
}
