package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/YogindraChaudhari/Product-Advisor/models"
)

// ErrNotFound is returned when no row matches, including rows owned by someone else
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Commits if fn succeeds, rolls back otherwise
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction.
	// Repositories called with it run inside the transaction
	Context() context.Context
}

// AdviceRepository stores advice records. Every operation besides Create
// is scoped to an owner: rows belonging to another user behave as missing
type AdviceRepository interface {
	// Create inserts a new advice
	Create(ctx context.Context, advice *models.Advice) error

	// ListByOwner returns the owner's advices, newest first
	ListByOwner(ctx context.Context, userID string) ([]*models.Advice, error)

	// DeleteByIDAndOwner deletes one advice, ErrNotFound when nothing matched
	DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, userID string) error

	// UpdateTitle renames one advice, ErrNotFound when nothing matched
	UpdateTitle(ctx context.Context, id uuid.UUID, userID, title string) error

	// DeleteAllByOwner removes every advice of the owner and returns how many were deleted
	DeleteAllByOwner(ctx context.Context, userID string) (int64, error)
}

// Repositories groups all repositories
type Repositories struct {
	Advices AdviceRepository
}
