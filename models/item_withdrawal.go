package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemWithdrawal records a sweep of a wishlist item's available
// balance into the owner's wallet.
type ItemWithdrawal struct {
	ID             uuid.UUID `json:"id" db:"id"`
	WishlistItemID uuid.UUID `json:"wishlist_item_id" db:"wishlist_item_id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Amount         float64   `json:"amount" db:"amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (ItemWithdrawal) TableName() string {
	return "item_withdrawals"
}

func (ItemWithdrawal) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS item_withdrawals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		wishlist_item_id UUID NOT NULL REFERENCES wishlist_items(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_item_withdrawals_item ON item_withdrawals(wishlist_item_id);
	CREATE INDEX IF NOT EXISTS idx_item_withdrawals_user ON item_withdrawals(user_id);`
}
