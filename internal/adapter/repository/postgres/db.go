// Package postgres implements the domain repositories over database/sql.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the shared *sql.DB handle the repositories run their queries on.
// Close comes from the embedded pool.
type DB struct {
	*sql.DB
}

// NewDB opens a connection pool for the given lib/pq connection string
// (key=value form, e.g. "host=localhost dbname=coinfolio sslmode=disable")
// and verifies the database is reachable before returning.
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
