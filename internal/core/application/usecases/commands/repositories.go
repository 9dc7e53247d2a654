// Package commands contains the business operations that drive the split-
// shipment saga. Each operation is a command value object paired with a
// handler; handlers own the transaction boundaries and the external gateway
// calls, and always surface phase failures after recording them.
package commands

import (
	"context"

	"splitship/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command
// handlers. These abstractions ensure data consistency across aggregate
// boundaries.
type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// SplitRequestRepoFactory provides the split request repository within
	// a transaction.
	SplitRequestRepoFactory interface {
		SplitRequestRepository() ports.SplitRequestRepository
	}

	// ReferenceRepoFactory provides the reference-row repository within a
	// transaction.
	ReferenceRepoFactory interface {
		ReferenceRepository() ports.ReferenceRepository
	}

	// SplitRequestUoW manages transactions for operations touching only the
	// split request aggregate.
	SplitRequestUoW interface {
		TxManager
		SplitRequestRepoFactory
	}

	// SplitRequestUoWFactory creates split-request unit of work instances.
	SplitRequestUoWFactory interface {
		Create() SplitRequestUoW
	}

	// SagaUoW manages transactions across the split request aggregate and
	// the shared reference rows, as the order-created saga needs.
	SagaUoW interface {
		TxManager
		SplitRequestRepoFactory
		ReferenceRepoFactory
	}

	// SagaUoWFactory creates saga unit of work instances.
	SagaUoWFactory interface {
		Create() SagaUoW
	}
)
