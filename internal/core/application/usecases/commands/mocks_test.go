package commands_test

import (
	"context"

	"splitship/internal/core/application/usecases/commands"
	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/core/domain/model/reference"
	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockSplitRequestRepository struct{ mock.Mock }

func (m *MockSplitRequestRepository) GetByPrimaryOrderID(
	ctx context.Context, primaryOrderID string,
) (*splitrequest.SplitRequest, error) {
	args := m.Called(ctx, primaryOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*splitrequest.SplitRequest), args.Error(1)
}

func (m *MockSplitRequestRepository) GetByPaymentOrderID(
	ctx context.Context, paymentOrderID string,
) (*splitrequest.SplitRequest, error) {
	args := m.Called(ctx, paymentOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*splitrequest.SplitRequest), args.Error(1)
}

func (m *MockSplitRequestRepository) Upsert(ctx context.Context, aggregate *splitrequest.SplitRequest) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockSplitRequestRepository) Update(ctx context.Context, aggregate *splitrequest.SplitRequest) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockSplitRequestRepository) AddHolds(ctx context.Context, holds []*splitrequest.FulfillmentHold) error {
	args := m.Called(ctx, holds)
	return args.Error(0)
}

func (m *MockSplitRequestRepository) MarkHoldsReleased(ctx context.Context, holdIDs []string) error {
	args := m.Called(ctx, holdIDs)
	return args.Error(0)
}

type MockReferenceRepository struct{ mock.Mock }

func (m *MockReferenceRepository) UpsertShop(ctx context.Context, shop *reference.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockReferenceRepository) GetShop(ctx context.Context, domain string) (*reference.Shop, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reference.Shop), args.Error(1)
}

func (m *MockReferenceRepository) UpsertOrder(ctx context.Context, order *reference.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockReferenceRepository) GetOrder(ctx context.Context, orderID string) (*reference.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reference.Order), args.Error(1)
}

func (m *MockReferenceRepository) UpsertCustomer(ctx context.Context, customer *reference.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockUoW satisfies both commands.SplitRequestUoW and commands.SagaUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) SplitRequestRepository() ports.SplitRequestRepository {
	args := m.Called()
	return args.Get(0).(ports.SplitRequestRepository)
}

func (m *MockUoW) ReferenceRepository() ports.ReferenceRepository {
	args := m.Called()
	return args.Get(0).(ports.ReferenceRepository)
}

type MockSagaUoWFactory struct{ mock.Mock }

func (m *MockSagaUoWFactory) Create() commands.SagaUoW {
	args := m.Called()
	return args.Get(0).(commands.SagaUoW)
}

type MockSplitRequestUoWFactory struct{ mock.Mock }

func (m *MockSplitRequestUoWFactory) Create() commands.SplitRequestUoW {
	args := m.Called()
	return args.Get(0).(commands.SplitRequestUoW)
}

type MockFulfillmentGateway struct{ mock.Mock }

func (m *MockFulfillmentGateway) SplitFulfillmentOrder(
	ctx context.Context, primaryOrderID string, parcels []parcel.Parcel,
) ([]string, error) {
	args := m.Called(ctx, primaryOrderID, parcels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFulfillmentGateway) HoldFulfillmentOrders(
	ctx context.Context, fulfillmentOrderIDs []string, reason string,
) ([]ports.HoldResult, error) {
	args := m.Called(ctx, fulfillmentOrderIDs, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HoldResult), args.Error(1)
}

func (m *MockFulfillmentGateway) ReleaseHolds(
	ctx context.Context, fulfillmentOrderID string, holdIDs []string,
) ([]ports.ReleaseResult, error) {
	args := m.Called(ctx, fulfillmentOrderID, holdIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ReleaseResult), args.Error(1)
}

func (m *MockFulfillmentGateway) CreateDraftOrder(ctx context.Context, spec ports.DraftOrderSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockFulfillmentGateway) CompleteDraftOrder(
	ctx context.Context, draftOrderID string,
) (ports.CompletedOrder, error) {
	args := m.Called(ctx, draftOrderID)
	return args.Get(0).(ports.CompletedOrder), args.Error(1)
}

func (m *MockFulfillmentGateway) SendInvoice(ctx context.Context, orderID, subject, messageHTML string) error {
	args := m.Called(ctx, orderID, subject, messageHTML)
	return args.Error(0)
}

func (m *MockFulfillmentGateway) CancelOrder(ctx context.Context, orderID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

// stubRateLookup returns a fixed rate, or a lookup miss when ok is false.
type stubRateLookup struct {
	rate ports.ShippingRate
	ok   bool
}

func (s stubRateLookup) Lookup(_, _ string) (ports.ShippingRate, bool) {
	return s.rate, s.ok
}
