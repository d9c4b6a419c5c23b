package db

import (
	"context"
)

// Rows is a forward-only cursor over a query result.
type Rows interface {
	Columns() ([]string, error)
	// ColumnTypeNames returns the database type of each column, such as
	// DATE or TIMESTAMPTZ, in upper case. Unknown types are empty.
	ColumnTypeNames() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Store defines the interface for database operations.
// Implementations should handle connection management and query execution.
type Store interface {
	Connect(ctx context.Context) error
	Close() error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// ConnParams identifies the database and the credentials to use.
type ConnParams struct {
	// ConnectionString in jdbc:vertica://host:port/database form.
	ConnectionString string
	User             string
	Password         string
}

// Factory creates an unconnected Store.
type Factory interface {
	NewStore(params ConnParams) (Store, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(params ConnParams) (Store, error)

func (f FactoryFunc) NewStore(params ConnParams) (Store, error) {
	return f(params)
}
