package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and repositories bound to the transaction.
// Client code must explicitly manage the transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns an error if no transaction is active or the commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns an error if no transaction is active or the rollback fails.
	Rollback(ctx context.Context) error

	// SplitRequestRepository returns a repository bound to the current
	// transaction.
	SplitRequestRepository() SplitRequestRepository

	// ReferenceRepository returns a repository bound to the current
	// transaction.
	ReferenceRepository() ReferenceRepository
}
