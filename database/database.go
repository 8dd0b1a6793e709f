package database

import (
	"database/sql"
	"fmt"

	"joygiver-server/models"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// Enable pgcrypto extension for gen_random_uuid()
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Order matters: tables are created respecting foreign key dependencies
	tables := []interface{}{
		models.User{},
		models.OTPCode{},
		models.ReferralCode{},
		models.Friendship{},
		models.Category{},
		models.CuratedItem{},
		models.Wishlist{},
		models.WishlistItem{},
		models.Contribution{},
		models.ContributionAllocation{},
		models.Wallet{},
		models.WalletTransaction{},
		models.WithdrawalRequest{},
		models.ItemWithdrawal{},
	}

	for _, table := range tables {
		if tableModel, ok := table.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			logrus.WithField("table", tableModel.TableName()).Debug("Creating table")
			if _, err := db.Exec(tableModel.CreateTableSQL()); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableModel.TableName(), err)
			}
		}
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("Database schema ready")
	return nil
}

// runMigrations handles schema updates for existing tables
func (db *DB) runMigrations() error {
	migrations := []string{
		// Columns added after the initial schema shipped
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS push_token TEXT;`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_verified BOOLEAN DEFAULT FALSE;`,
		`ALTER TABLE wishlists ADD COLUMN IF NOT EXISTS target_amount NUMERIC(12,2) DEFAULT 0;`,
		`ALTER TABLE wishlists ADD COLUMN IF NOT EXISTS cover_image TEXT;`,
		`ALTER TABLE wishlist_items ADD COLUMN IF NOT EXISTS amount_pending NUMERIC(12,2) DEFAULT 0;`,
		`ALTER TABLE wishlist_items ADD COLUMN IF NOT EXISTS amount_withdrawn NUMERIC(12,2) DEFAULT 0;`,
		`ALTER TABLE contributions ADD COLUMN IF NOT EXISTS anonymous BOOLEAN DEFAULT FALSE;`,
		`ALTER TABLE contributions ADD COLUMN IF NOT EXISTS message TEXT;`,
		`ALTER TABLE curated_items ADD COLUMN IF NOT EXISTS currency CHAR(3) DEFAULT 'USD';`,

		// Backfill defaults on rows created before the columns existed
		`UPDATE users SET is_verified = FALSE WHERE is_verified IS NULL;`,
		`UPDATE users SET avatar = 'https://api.dicebear.com/7.x/avataaars/svg?seed=' || id
		 WHERE avatar IS NULL OR avatar = '';`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			// Continue with other migrations even if one fails
			logrus.WithError(err).Warnf("Migration %d failed", i+1)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
