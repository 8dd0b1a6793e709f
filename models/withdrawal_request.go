package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal request statuses
const (
	WithdrawalPending  = "pending"
	WithdrawalPaid     = "paid"
	WithdrawalRejected = "rejected"
)

type WithdrawalRequest struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	WalletID      uuid.UUID  `json:"wallet_id" db:"wallet_id"`
	Amount        float64    `json:"amount" db:"amount"`
	AccountName   string     `json:"account_name" db:"account_name"`
	AccountNumber string     `json:"account_number" db:"account_number"`
	BankName      string     `json:"bank_name" db:"bank_name"`
	Status        string     `json:"status" db:"status"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

func (WithdrawalRequest) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS withdrawal_requests (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		wallet_id UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL,
		account_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		bank_name TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'rejected')),
		reviewed_by UUID REFERENCES users(id),
		reviewed_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_user ON withdrawal_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_status ON withdrawal_requests(status);`
}
