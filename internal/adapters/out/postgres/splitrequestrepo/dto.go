// Package splitrequestrepo provides data transfer objects and mapping
// functions for split request persistence. It implements the repository for
// the split request aggregate, converting between the domain model and the
// relational representation.
package splitrequestrepo

import (
	"time"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/core/domain/model/splitrequest"

	"github.com/google/uuid"
)

// SplitRequestDTO represents the database structure for persisting split
// request aggregates. The unique index on PrimaryOrderID is the saga's
// idempotency boundary: concurrent deliveries of the same order serialize
// through it.
type SplitRequestDTO struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey"`
	PrimaryOrderID          string    `gorm:"uniqueIndex"`
	ShopDomain              string    `gorm:"index"`
	UserChoice              bool
	Status                  int `gorm:"index"`
	CalculatedParcels       int
	ShippingLevel           string
	AdditionalShippingCents int64
	PaymentOrderID          *string `gorm:"index"`
	DraftOrderID            *string
	ErrorLog                *string
	PrimaryOrderCancelledAt *time.Time
	PaymentOrderCancelledAt *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time

	Holds []FulfillmentHoldDTO `gorm:"foreignKey:SplitRequestID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention.
func (SplitRequestDTO) TableName() string {
	return "split_requests"
}

// FulfillmentHoldDTO represents one hold record owned by a split request.
type FulfillmentHoldDTO struct {
	HoldID             string    `gorm:"primaryKey"`
	FulfillmentOrderID string    `gorm:"index"`
	SplitRequestID     uuid.UUID `gorm:"type:uuid;index"`
	Released           bool
}

// TableName overrides GORM's default naming convention.
func (FulfillmentHoldDTO) TableName() string {
	return "fulfillment_holds"
}

func fromDomain(aggregate *splitrequest.SplitRequest) SplitRequestDTO {
	return SplitRequestDTO{
		ID:                      aggregate.ID().Bytes(),
		PrimaryOrderID:          aggregate.PrimaryOrderID(),
		ShopDomain:              aggregate.ShopDomain(),
		UserChoice:              aggregate.UserChoice(),
		Status:                  int(aggregate.Status()),
		CalculatedParcels:       aggregate.CalculatedParcels(),
		ShippingLevel:           aggregate.ShippingLevel(),
		AdditionalShippingCents: aggregate.AdditionalShippingCents(),
		PaymentOrderID:          aggregate.PaymentOrderID(),
		DraftOrderID:            aggregate.DraftOrderID(),
		ErrorLog:                aggregate.ErrorLog(),
		PrimaryOrderCancelledAt: aggregate.PrimaryOrderCancelledAt(),
		PaymentOrderCancelledAt: aggregate.PaymentOrderCancelledAt(),
		CreatedAt:               aggregate.CreatedAt(),
		UpdatedAt:               aggregate.UpdatedAt(),
	}
}

func holdFromDomain(hold *splitrequest.FulfillmentHold) FulfillmentHoldDTO {
	return FulfillmentHoldDTO{
		HoldID:             hold.HoldID(),
		FulfillmentOrderID: hold.FulfillmentOrderID(),
		SplitRequestID:     hold.SplitRequestID().Bytes(),
		Released:           hold.Released(),
	}
}

func toDomain(dto SplitRequestDTO) (*splitrequest.SplitRequest, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	holds := make([]*splitrequest.FulfillmentHold, 0, len(dto.Holds))
	for _, holdDTO := range dto.Holds {
		hold, holdErr := holdToDomain(holdDTO)
		if holdErr != nil {
			return nil, holdErr
		}
		holds = append(holds, hold)
	}

	return splitrequest.RestoreSplitRequest(
		id,
		dto.PrimaryOrderID,
		dto.ShopDomain,
		dto.UserChoice,
		splitrequest.Status(dto.Status),
		dto.CalculatedParcels,
		dto.ShippingLevel,
		dto.AdditionalShippingCents,
		dto.PaymentOrderID,
		dto.DraftOrderID,
		dto.ErrorLog,
		dto.PrimaryOrderCancelledAt,
		dto.PaymentOrderCancelledAt,
		dto.CreatedAt,
		dto.UpdatedAt,
		holds,
	)
}

func holdToDomain(dto FulfillmentHoldDTO) (*splitrequest.FulfillmentHold, error) {
	splitRequestID, err := kernel.UUIDFromBytes(dto.SplitRequestID[:])
	if err != nil {
		return nil, err
	}
	return splitrequest.RestoreFulfillmentHold(dto.HoldID, dto.FulfillmentOrderID, splitRequestID, dto.Released)
}
