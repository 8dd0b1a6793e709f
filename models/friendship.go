package models

import (
	"time"

	"github.com/google/uuid"
)

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

type Friendship struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FriendID  uuid.UUID `json:"friend_id" db:"friend_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (Friendship) TableName() string {
	return "friendships"
}

func (Friendship) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS friendships (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted')),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		UNIQUE(user_id, friend_id),
		CHECK (user_id <> friend_id)
	);
	CREATE INDEX IF NOT EXISTS idx_friendships_user ON friendships(user_id);
	CREATE INDEX IF NOT EXISTS idx_friendships_friend ON friendships(friend_id);`
}
