package models

import (
	"time"

	"github.com/google/uuid"
)

// Contribution statuses
const (
	ContributionPending   = "pending"
	ContributionSucceeded = "succeeded"
	ContributionFailed    = "failed"
)

// Allocation strategies for wishlist-level contributions
const (
	StrategyPriority     = "priority"
	StrategyEqual        = "equal"
	StrategyProportional = "proportional"
)

type Contribution struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	WishlistID       uuid.UUID  `json:"wishlist_id" db:"wishlist_id"`
	WishlistItemID   *uuid.UUID `json:"wishlist_item_id,omitempty" db:"wishlist_item_id"`
	ContributorName  string     `json:"contributor_name" db:"contributor_name"`
	ContributorEmail *string    `json:"contributor_email,omitempty" db:"contributor_email"`
	Message          *string    `json:"message,omitempty" db:"message"`
	Amount           float64    `json:"amount" db:"amount"`
	Currency         string     `json:"currency" db:"currency"`
	Strategy         *string    `json:"strategy,omitempty" db:"strategy"`
	Status           string     `json:"status" db:"status"`
	PaymentRef       *string    `json:"payment_reference,omitempty" db:"payment_reference"`
	Anonymous        bool       `json:"anonymous" db:"anonymous"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

func (Contribution) TableName() string {
	return "contributions"
}

func (Contribution) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contributions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		wishlist_id UUID NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
		wishlist_item_id UUID REFERENCES wishlist_items(id) ON DELETE SET NULL,
		contributor_name TEXT NOT NULL,
		contributor_email TEXT,
		message TEXT,
		amount NUMERIC(12,2) NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		strategy VARCHAR(20) CHECK (strategy IN ('priority', 'equal', 'proportional')),
		status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'succeeded', 'failed')),
		payment_reference TEXT UNIQUE,
		anonymous BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_contributions_wishlist ON contributions(wishlist_id);
	CREATE INDEX IF NOT EXISTS idx_contributions_item ON contributions(wishlist_item_id);
	CREATE INDEX IF NOT EXISTS idx_contributions_status ON contributions(status);
	CREATE INDEX IF NOT EXISTS idx_contributions_payment_ref ON contributions(payment_reference);`
}
