package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Balance        float64   `json:"balance" db:"balance"`
	Pending        float64   `json:"pending" db:"pending"`
	TotalWithdrawn float64   `json:"total_withdrawn" db:"total_withdrawn"`
	Currency       string    `json:"currency" db:"currency"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (Wallet) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		pending NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_withdrawn NUMERIC(12,2) NOT NULL DEFAULT 0,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
