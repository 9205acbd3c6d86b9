package store

import (
	"context"
	"time"

	"github.com/nhle/tasklite/internal/model"
)

// Store defines the persistence interface for local tasks.
//
// Every method uses its own scoped connection or transaction; callers never
// hold a handle between calls. UpdateTitle and ToggleDone return a
// NotFoundError for unknown ids, while Delete of an unknown id is a no-op.
type Store interface {
	// === Schema ===

	EnsureSchema(ctx context.Context) error
	SeedIfEmpty(ctx context.Context) (int, error)

	// === Queries ===

	ListAll(ctx context.Context) ([]model.Task, error)
	ListTitles(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*model.Task, error)
	Count(ctx context.Context) (int, error)

	// === Mutations ===

	Insert(ctx context.Context, title string, done bool) (int64, error)
	InsertAt(ctx context.Context, title string, done bool, createdAt time.Time) (int64, error)
	UpdateTitle(ctx context.Context, id int64, title string) error
	ToggleDone(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error

	Close() error
}
