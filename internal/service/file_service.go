package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/meetgrid/meet-service/internal/domain"
)

type FileService struct {
	fileRepo        FileRepo
	participantRepo ParticipantRepo
	blobs           BlobStore
}

func NewFileService(fileRepo FileRepo, participantRepo ParticipantRepo, blobs BlobStore) *FileService {
	return &FileService{
		fileRepo:        fileRepo,
		participantRepo: participantRepo,
		blobs:           blobs,
	}
}

// Upload streams the blob to disk, then records the metadata row. When the
// row insert fails the blob is removed so no unreferenced row can exist;
// the reverse order would leave rows pointing at nothing.
func (s *FileService) Upload(ctx context.Context, roomID string, userID int64, originalName string, src io.Reader) (*domain.File, error) {
	member, err := s.participantRepo.Exists(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotInRoom
	}

	blob, err := s.blobs.Save(roomID, originalName, src)
	if err != nil {
		return nil, err
	}

	f := &domain.File{
		RoomID:       roomID,
		UserID:       userID,
		OriginalName: originalName,
		StoredName:   blob.StoredName,
		StoragePath:  blob.Path,
		ContentType:  blob.ContentType,
		SizeBytes:    blob.SizeBytes,
	}
	if err := s.fileRepo.Save(ctx, f); err != nil {
		if rmErr := s.blobs.Remove(blob.Path); rmErr != nil {
			slog.Warn("orphan blob left behind", "path", blob.Path, "err", rmErr)
		}
		return nil, err
	}

	return f, nil
}

func (s *FileService) List(ctx context.Context, roomID, after string, limit int) ([]domain.File, string, error) {
	return s.fileRepo.ListByRoom(ctx, roomID, after, limit)
}

// OpenForDownload returns the metadata row and an open reader over the blob.
func (s *FileService) OpenForDownload(ctx context.Context, fileID string) (*domain.File, io.ReadSeekCloser, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return f, rc, nil
}

// Delete removes the row first, then the blob. A crash in between leaves
// an orphan blob, never a dangling row. Uploader only.
func (s *FileService) Delete(ctx context.Context, fileID string, userID int64) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if f.UserID != userID {
		return domain.ErrNotUploader
	}
	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Remove(f.StoragePath); err != nil {
		slog.Warn("blob remove failed", "path", f.StoragePath, "err", err)
	}
	return nil
}
