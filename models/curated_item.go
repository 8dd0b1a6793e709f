package models

import (
	"time"

	"github.com/google/uuid"
)

// Curated item scopes
const (
	ItemScopeGlobal = "global"
	ItemScopeCustom = "custom"
)

type CuratedItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`
	CreatorID   *uuid.UUID `json:"creator_id,omitempty" db:"creator_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`
	Price       float64    `json:"price" db:"price"`
	Currency    string     `json:"currency" db:"currency"`
	Scope       string     `json:"scope" db:"scope"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (CuratedItem) TableName() string {
	return "curated_items"
}

func (CuratedItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS curated_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		creator_id UUID REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		image_url TEXT,
		price NUMERIC(12,2) NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		scope VARCHAR(10) NOT NULL DEFAULT 'global' CHECK (scope IN ('global', 'custom')),
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_curated_items_category ON curated_items(category_id);
	CREATE INDEX IF NOT EXISTS idx_curated_items_creator ON curated_items(creator_id);
	CREATE INDEX IF NOT EXISTS idx_curated_items_scope ON curated_items(scope);`
}
