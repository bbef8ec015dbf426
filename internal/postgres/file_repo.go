package postgres

import (
	"context"
	"fmt"

	"github.com/meetgrid/meet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FileRepository struct {
	db *pgxpool.Pool
}

func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Save(ctx context.Context, f *domain.File) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO room_files (room_id, user_id, original_name, stored_name, storage_path, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, f.RoomID, f.UserID, f.OriginalName, f.StoredName, f.StoragePath, f.ContentType, f.SizeBytes)

	return row.Scan(&f.ID, &f.CreatedAt)
}

func (r *FileRepository) Get(ctx context.Context, id string) (*domain.File, error) {
	var f domain.File
	err := r.db.QueryRow(ctx, `
		SELECT id, room_id, user_id, original_name, stored_name, storage_path, content_type, size_bytes, created_at
		FROM room_files WHERE id=$1
	`, id).Scan(&f.ID, &f.RoomID, &f.UserID, &f.OriginalName, &f.StoredName, &f.StoragePath, &f.ContentType, &f.SizeBytes, &f.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) ListByRoom(ctx context.Context, roomID, after string, limit int) ([]domain.File, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const q = `
		SELECT id, room_id, user_id, original_name, stored_name, storage_path, content_type, size_bytes, created_at
		FROM room_files
		WHERE room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.File
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.ID, &f.RoomID, &f.UserID, &f.OriginalName, &f.StoredName, &f.StoragePath, &f.ContentType, &f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, f)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM room_files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
