package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist statuses
const (
	WishlistDraft  = "draft"
	WishlistActive = "active"
	WishlistClosed = "closed"
)

type Wishlist struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Title           string     `json:"title" db:"title"`
	CelebrationType string     `json:"celebration_type" db:"celebration_type"`
	CelebrationDate time.Time  `json:"celebration_date" db:"celebration_date"`
	ShareCode       string     `json:"share_code" db:"share_code"`
	CoverImage      *string    `json:"cover_image,omitempty" db:"cover_image"`
	Status          string     `json:"status" db:"status"`
	Currency        string     `json:"currency" db:"currency"`
	ItemCount       int        `json:"item_count" db:"item_count"`
	TargetAmount    float64    `json:"target_amount" db:"target_amount"`
	AmountRaised    float64    `json:"amount_raised" db:"amount_raised"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	Items           []WishlistItem `json:"items,omitempty" db:"-"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

func (Wishlist) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS wishlists (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		celebration_type TEXT NOT NULL,
		celebration_date TIMESTAMP WITH TIME ZONE NOT NULL,
		share_code VARCHAR(16) UNIQUE NOT NULL,
		cover_image TEXT,
		status VARCHAR(10) NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'closed')),
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		item_count INTEGER DEFAULT 0,
		target_amount NUMERIC(12,2) DEFAULT 0,
		amount_raised NUMERIC(12,2) DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_wishlists_user ON wishlists(user_id);
	CREATE INDEX IF NOT EXISTS idx_wishlists_share_code ON wishlists(share_code);
	CREATE INDEX IF NOT EXISTS idx_wishlists_status ON wishlists(status);`
}
