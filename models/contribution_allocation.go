package models

import (
	"time"

	"github.com/google/uuid"
)

// ContributionAllocation records how much of a contribution landed on
// a single wishlist item after the split.
type ContributionAllocation struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ContributionID uuid.UUID `json:"contribution_id" db:"contribution_id"`
	WishlistItemID uuid.UUID `json:"wishlist_item_id" db:"wishlist_item_id"`
	Amount         float64   `json:"amount" db:"amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (ContributionAllocation) TableName() string {
	return "contribution_allocations"
}

func (ContributionAllocation) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contribution_allocations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contribution_id UUID NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
		wishlist_item_id UUID NOT NULL REFERENCES wishlist_items(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_contribution_allocations_contribution ON contribution_allocations(contribution_id);
	CREATE INDEX IF NOT EXISTS idx_contribution_allocations_item ON contribution_allocations(wishlist_item_id);`
}
