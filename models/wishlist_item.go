package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	WishlistID        uuid.UUID  `json:"wishlist_id" db:"wishlist_id"`
	CuratedItemID     *uuid.UUID `json:"curated_item_id,omitempty" db:"curated_item_id"`
	Name              string     `json:"name" db:"name"`
	ImageURL          *string    `json:"image_url,omitempty" db:"image_url"`
	Price             float64    `json:"price" db:"price"`
	Priority          int        `json:"priority" db:"priority"`
	ShareCode         string     `json:"share_code" db:"share_code"`
	AmountContributed float64    `json:"amount_contributed" db:"amount_contributed"`
	AmountAvailable   float64    `json:"amount_available" db:"amount_available"`
	AmountPending     float64    `json:"amount_pending" db:"amount_pending"`
	AmountWithdrawn   float64    `json:"amount_withdrawn" db:"amount_withdrawn"`
	IsFullyFunded     bool       `json:"is_fully_funded" db:"is_fully_funded"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

func (WishlistItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS wishlist_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		wishlist_id UUID NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
		curated_item_id UUID REFERENCES curated_items(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		image_url TEXT,
		price NUMERIC(12,2) NOT NULL,
		priority INTEGER DEFAULT 0,
		share_code VARCHAR(16) UNIQUE NOT NULL,
		amount_contributed NUMERIC(12,2) DEFAULT 0,
		amount_available NUMERIC(12,2) DEFAULT 0,
		amount_pending NUMERIC(12,2) DEFAULT 0,
		amount_withdrawn NUMERIC(12,2) DEFAULT 0,
		is_fully_funded BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_wishlist_items_wishlist ON wishlist_items(wishlist_id);
	CREATE INDEX IF NOT EXISTS idx_wishlist_items_share_code ON wishlist_items(share_code);
	CREATE INDEX IF NOT EXISTS idx_wishlist_items_priority ON wishlist_items(wishlist_id, priority);`
}
