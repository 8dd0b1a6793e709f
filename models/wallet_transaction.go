package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet transaction types
const (
	TxCredit     = "credit"
	TxWithdrawal = "withdrawal"
	TxReversal   = "reversal"
)

type WalletTransaction struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WalletID    uuid.UUID `json:"wallet_id" db:"wallet_id"`
	Type        string    `json:"type" db:"type"`
	Amount      float64   `json:"amount" db:"amount"`
	Reference   *string   `json:"reference,omitempty" db:"reference"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func (WalletTransaction) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS wallet_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		wallet_id UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		type VARCHAR(20) NOT NULL CHECK (type IN ('credit', 'withdrawal', 'reversal')),
		amount NUMERIC(12,2) NOT NULL,
		reference TEXT,
		description TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_wallet_transactions_wallet ON wallet_transactions(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_wallet_transactions_created ON wallet_transactions(created_at);`
}
