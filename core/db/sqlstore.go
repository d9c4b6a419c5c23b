package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fbz-tec/vexport/internal/logger"
)

// SQLStore is a Store backed by a database/sql driver.
type SQLStore struct {
	driver string
	dsn    string
	db     *sql.DB
}

// NewSQLStore creates a store for the named database/sql driver.
func NewSQLStore(driver, dsn string) *SQLStore {
	return &SQLStore{driver: driver, dsn: dsn}
}

// Connect opens the pool and verifies connectivity with a ping. No timeout
// is applied beyond what ctx and the driver impose.
func (s *SQLStore) Connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	logger.Debug("Attempting to connect to %s database: %s", s.driver, sanitizeDSN(s.dsn))

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	logger.Debug("Connection established, verifying connectivity (ping)...")
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("Database ping successful")
	s.db = db
	return nil
}

// Close releases the connection pool. Closing an unconnected store is a no-op.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	logger.Debug("Closing database connection...")
	err := s.db.Close()
	s.db = nil
	if err != nil {
		logger.Debug("Error closing database connection: %v", err)
		return fmt.Errorf("unable to close database connection: %w", err)
	}
	logger.Debug("Database connection closed successfully")
	return nil
}

func (s *SQLStore) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.db == nil {
		logger.Debug("No active database connection; query cannot be executed")
		return nil, fmt.Errorf("database not connected")
	}

	logger.Debug("Executing SQL query: %s", query)

	startTime := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	logger.Debug("Query executed successfully in %v", time.Since(startTime))
	return sqlRows{rows}, nil
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) ColumnTypeNames() ([]string, error) {
	types, err := r.ColumnTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = strings.ToUpper(ct.DatabaseTypeName())
	}
	return names, nil
}

// sanitizeDSN masks the password inside a URL-style DSN before logging.
func sanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "<opaque-dsn>"
	}

	var userInfo string
	if u.User != nil {
		username := u.User.Username()
		if _, hasPwd := u.User.Password(); hasPwd {
			userInfo = fmt.Sprintf("%s:***@", username)
		} else {
			userInfo = fmt.Sprintf("%s@", username)
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("%s://%s%s%s", u.Scheme, userInfo, u.Host, path)
}
