package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurascan/receipt-scan/internal/config"
)

// DB wraps the connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Connect creates a new database connection pool
func Connect(databaseURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Configure pool
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Println("Database connected successfully")
	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations runs all database migrations
func RunMigrations(db *DB) error {
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for version, migration := range migrations {
		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", version, err)
		}

		if exists {
			continue
		}

		log.Printf("Applying migration %d...", version)
		_, err = db.Pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}

		_, err = db.Pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)",
			version,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}

		log.Printf("Migration %d applied successfully", version)
	}

	return nil
}

// seedAccounts are the demo accounts the login endpoint authenticates
// against. They share the configured seed password.
var seedAccounts = []struct {
	Username string
	Email    string
}{
	{Username: "test", Email: "test@example.com"},
	{Username: "Togher", Email: "togher@example.com"},
}

// EnsureSeedUsers creates the demo accounts if they don't exist
func EnsureSeedUsers(db *DB, cfg *config.Config) error {
	if cfg.SeedUserPassword == "" {
		log.Println("SEED_USER_PASSWORD not set, skipping seed user creation")
		return nil
	}

	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, account := range seedAccounts {
		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)",
			account.Username,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for user %s: %w", account.Username, err)
		}

		if exists {
			continue
		}

		_, err = db.Pool.Exec(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
		`, account.Username, account.Email, string(hashedPassword))
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", account.Username, err)
		}

		log.Printf("Seed user created: %s", account.Username)
	}

	return nil
}

// migrations is an ordered map of migration version to SQL
var migrations = map[int]string{
	1: migration001,
}

const migration001 = `
-- Users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    last_login_at TIMESTAMP
);

-- Receipts table: parsed fields plus the object-store coordinates of the
-- uploaded image. Parsed amounts are kept as the normalized strings the
-- parser produces; user_id is nullable so rows can be detached on delete.
CREATE TABLE IF NOT EXISTS receipts (
    id SERIAL PRIMARY KEY,
    user_id INT REFERENCES users(id),
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    company_name TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    receipt_date VARCHAR(20) NOT NULL DEFAULT '',
    receipt_time VARCHAR(10) NOT NULL DEFAULT '',
    currency VARCHAR(3) NOT NULL DEFAULT '',
    subtotal VARCHAR(20) NOT NULL DEFAULT '',
    tax_amount VARCHAR(20) NOT NULL DEFAULT '',
    total VARCHAR(20) NOT NULL DEFAULT '',
    items JSONB NOT NULL DEFAULT '[]',
    raw_text TEXT,
    error_message TEXT,
    s3_bucket VARCHAR(255) NOT NULL,
    s3_key VARCHAR(512) NOT NULL,
    original_filename VARCHAR(255),
    content_type VARCHAR(100),
    file_size_bytes BIGINT,
    processed_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_receipts_user_processed ON receipts(user_id, processed_at DESC);
CREATE INDEX IF NOT EXISTS idx_receipts_status ON receipts(status);
`
