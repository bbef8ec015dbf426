package domain

import "time"

type Room struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	MaxParticipants int64     `db:"max_participants"`
	CreatedBy       int64     `db:"created_by"`
	CreatedAt       time.Time `db:"created_at"`
}

// Channel is the broadcast channel name carrying the room's events.
func (r *Room) Channel() string { return "room." + r.ID }
