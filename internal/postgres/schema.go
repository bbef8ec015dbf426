package postgres

import "context"

// EnsureSchema runs the idempotent schema statements at startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name             TEXT NOT NULL,
			max_participants INT NOT NULL DEFAULT 10,
			created_by       BIGINT NOT NULL REFERENCES users(id),
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS room_participants (
			room_id   UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
			user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (room_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS room_messages (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			room_id    UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			reply_to   UUID REFERENCES room_messages(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS room_messages_room_created_idx
			ON room_messages (room_id, created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS room_files (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			room_id       UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
			user_id       BIGINT NOT NULL REFERENCES users(id),
			original_name TEXT NOT NULL,
			stored_name   TEXT NOT NULL,
			storage_path  TEXT NOT NULL,
			content_type  TEXT NOT NULL,
			size_bytes    BIGINT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS room_files_room_created_idx
			ON room_files (room_id, created_at DESC, id DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
