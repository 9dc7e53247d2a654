package refrepo

import (
	"context"
	"errors"

	"splitship/internal/core/domain/model/reference"
	"splitship/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReferenceRepository implements ReferenceRepository using GORM.
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GORM reference repository.
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// UpsertShop inserts the shop if missing. Conflicts do nothing so the
// operator-controlled SplitEnabled flag of an existing row survives
// event-driven upserts.
func (r *GormReferenceRepository) UpsertShop(ctx context.Context, shop *reference.Shop) error {
	dto := shopFromDomain(shop)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoNothing: true,
	}).Create(&dto).Error
}

// GetShop retrieves a shop by domain.
func (r *GormReferenceRepository) GetShop(ctx context.Context, domain string) (*reference.Shop, error) {
	var dto ShopDTO
	err := r.db.WithContext(ctx).First(&dto, "domain = ?", domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shop", domain)
		}
		return nil, err
	}
	return shopToDomain(dto), nil
}

// UpsertOrder inserts or updates an order reference row by order id,
// last write wins on non-key fields.
func (r *GormReferenceRepository) UpsertOrder(ctx context.Context, order *reference.Order) error {
	dto := orderFromDomain(order)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_name", "shop_domain", "customer_id", "cancelled_at", "updated_at",
		}),
	}).Create(&dto).Error
}

// GetOrder retrieves an order reference row by order id.
func (r *GormReferenceRepository) GetOrder(ctx context.Context, orderID string) (*reference.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", orderID)
		}
		return nil, err
	}
	return orderToDomain(dto), nil
}

// UpsertCustomer inserts or updates a customer reference row by customer id.
func (r *GormReferenceRepository) UpsertCustomer(ctx context.Context, customer *reference.Customer) error {
	dto := customerFromDomain(customer)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_domain", "locale", "updated_at",
		}),
	}).Create(&dto).Error
}
