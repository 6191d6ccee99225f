// Package repository declares the storage interfaces consumed by the service
// layer. Services depend on these interfaces, never on the sqlite package —
// that's what lets tests inject in-memory mocks and what would let a
// Postgres implementation slot in without touching business logic.
package repository

import (
	"context"

	"github.com/sakif/task-manager/internal/model"
)

// AccountRepository persists accounts.
//
// Create and Update report uniqueness violations as apperror.Conflict with
// the offending field, checked in id → email → username precedence.
// Lookups that match nothing return apperror.NotFound.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)

	// Login-scoped lookups return only what password verification needs.
	GetLoginByEmail(ctx context.Context, email string) (*model.LoginAccount, error)
	GetLoginByUsername(ctx context.Context, username string) (*model.LoginAccount, error)

	Update(ctx context.Context, account *model.Account) error

	// Delete cascades to the account's tasks (enforced by the storage engine).
	Delete(ctx context.Context, id string) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)

	// ListByAccount returns the account's tasks in insertion order.
	// An empty slice is a valid result, not an error.
	ListByAccount(ctx context.Context, accountID string) ([]model.Task, error)

	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error

	// Bulk deletes are owner-scoped and return the number of rows removed.
	DeleteCompleted(ctx context.Context, accountID string) (int64, error)
	DeleteAll(ctx context.Context, accountID string) (int64, error)
}
