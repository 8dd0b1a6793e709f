package models

import (
	"time"

	"github.com/google/uuid"
)

// OTP purposes
const (
	OTPPurposeVerify = "verify"
	OTPPurposeReset  = "reset"
)

type OTPCode struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Code      string    `json:"-" db:"code"`
	Purpose   string    `json:"purpose" db:"purpose"`
	Used      bool      `json:"used" db:"used"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

func (OTPCode) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS otp_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code VARCHAR(6) NOT NULL,
		purpose VARCHAR(20) NOT NULL CHECK (purpose IN ('verify', 'reset')),
		used BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_otp_codes_user ON otp_codes(user_id);
	CREATE INDEX IF NOT EXISTS idx_otp_codes_expires ON otp_codes(expires_at);`
}
