package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Phone        *string    `json:"phone" db:"phone"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Avatar       *string    `json:"avatar,omitempty" db:"avatar"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	ReferredBy   *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"`
	PushToken    *string    `json:"push_token,omitempty" db:"push_token"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (User) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE NOT NULL,
		phone TEXT UNIQUE,
		password_hash TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		avatar TEXT,
		role TEXT DEFAULT 'user',
		is_active BOOLEAN DEFAULT TRUE,
		is_verified BOOLEAN DEFAULT FALSE,
		referred_by UUID REFERENCES users(id) ON DELETE SET NULL,
		push_token TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_referred_by ON users(referred_by);`
}
