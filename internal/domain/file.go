package domain

import "time"

// File is the metadata row for an uploaded blob. The blob itself lives on
// disk under storage_path; the row is append-only.
type File struct {
	ID           string    `db:"id"`
	RoomID       string    `db:"room_id"`
	UserID       int64     `db:"user_id"`
	OriginalName string    `db:"original_name"`
	StoredName   string    `db:"stored_name"`
	StoragePath  string    `db:"storage_path"`
	ContentType  string    `db:"content_type"`
	SizeBytes    int64     `db:"size_bytes"`
	CreatedAt    time.Time `db:"created_at"`
}
