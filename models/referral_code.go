package models

import (
	"time"

	"github.com/google/uuid"
)

type ReferralCode struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Code      string    `json:"code" db:"code"`
	UseCount  int       `json:"use_count" db:"use_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

func (ReferralCode) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS referral_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		code VARCHAR(12) UNIQUE NOT NULL,
		use_count INTEGER DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_referral_codes_code ON referral_codes(code);`
}
