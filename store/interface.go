//go:generate mockgen -package mocks -destination mocks/store.go -source=interface.go
package store

import (
	"context"
)

// Store is the remote structured store that receives staged rows.
type Store interface {
	Prober
	Inserter
	GetType() string
	Close() error
}

type Prober interface {
	// Probe performs a zero-row read against collection and returns an error if it is absent or unreachable.
	Probe(ctx context.Context, collection string) error
}

type Inserter interface {
	// Insert writes rows to collection as one bulk operation.
	// Each row is keyed by the names in columns; missing keys are sent as null.
	Insert(ctx context.Context, collection string, columns []string, rows []map[string]interface{}) error
}
