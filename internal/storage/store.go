// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/hisaab-app/hisaab/internal/models"
)

// Store defines the persistence boundary of the ledger. On startup the
// store supplies the last saved snapshot; after every mutation the ledger
// hands the resulting state back. This abstraction allows swapping storage
// backends (SQLite, PostgreSQL, etc.) without touching the ledger.
type Store interface {
	// LoadSnapshot returns the last persisted ledger state. An empty
	// database yields an empty snapshot, not an error.
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)

	// SaveSnapshot atomically replaces the persisted state with the given
	// snapshot.
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}
