// Package postgres provides the GORM-based implementation of the Unit of
// Work pattern. A unit of work spans one business transaction: repositories
// obtained from it run inside the same database transaction, and modified
// aggregates are tracked until commit.
package postgres

import (
	"context"

	"splitship/internal/adapters/out/postgres/refrepo"
	"splitship/internal/adapters/out/postgres/splitrequestrepo"
	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
// This is useful for implementing patterns like event sourcing or outbox pattern.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate interface{} // Will be changed to a common Aggregate interface in the future
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database
// connections. Each business operation gets a fresh unit of work with proper
// isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances. The provided database connection is shared by all created
// instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance ready for transaction
// management. Each instance maintains its own transaction state and
// aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates database transactions and tracks aggregate
// changes for business operations. Repositories obtained from it execute
// within the current transaction when one is active, otherwise on the main
// connection.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls on the same instance are safe and do not nest transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		return uow.tx.Error
	}

	return nil
}

// Commit finalizes all changes made within the current transaction.
// Returns an error if no active transaction exists or the commit fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction.
// Rolling back with no active transaction returns gorm.ErrInvalidTransaction,
// which callers running rollback from a defer ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// SplitRequestRepository provides split request persistence within the unit
// of work. Added and updated aggregates are tracked via TrackAggregate.
func (uow *GormUnitOfWork) SplitRequestRepository() ports.SplitRequestRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return splitrequestrepo.NewGormSplitRequestRepository(db, uow)
}

// ReferenceRepository provides shop/order/customer reference persistence
// within the unit of work.
func (uow *GormUnitOfWork) ReferenceRepository() ports.ReferenceRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return refrepo.NewGormReferenceRepository(db)
}

// TrackAggregate registers a domain aggregate as modified within this unit
// of work. Repository implementations call it when aggregates are added or
// updated.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}
