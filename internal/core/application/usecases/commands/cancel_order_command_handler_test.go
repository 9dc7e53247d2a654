package commands_test

import (
	"testing"
	"time"

	"splitship/internal/core/application/usecases/commands"
	"splitship/internal/core/domain/model/reference"
	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCancelOrderFixture() (*MockSplitRequestRepository, *MockReferenceRepository, *MockSagaUoWFactory) {
	requestRepo := new(MockSplitRequestRepository)
	refRepo := new(MockReferenceRepository)

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("SplitRequestRepository").Return(requestRepo)
	uow.On("ReferenceRepository").Return(refRepo)
	factory := new(MockSagaUoWFactory)
	factory.On("Create").Return(uow)
	return requestRepo, refRepo, factory
}

func TestCancelOrderCommandHandler_Handle_PrimaryOrderCancelled(t *testing.T) {
	ctx := t.Context()
	request := awaitingRequest(t, "fo-1")
	requestRepo, refRepo, factory := newCancelOrderFixture()

	requestRepo.On("GetByPrimaryOrderID", ctx, "ord-1").Return(request, nil).Once()

	order, err := reference.NewOrder("ord-1", "#1001", "demo.example.com", "cust-1")
	require.NoError(t, err)
	refRepo.On("GetOrder", ctx, "ord-1").Return(order, nil).Once()

	var stamped *reference.Order
	refRepo.On("UpsertOrder", ctx, mock.AnythingOfType("*reference.Order")).
		Run(func(args mock.Arguments) {
			stamped = args.Get(1).(*reference.Order)
		}).Return(nil).Once()

	var updated *splitrequest.SplitRequest
	requestRepo.On("Update", ctx, mock.AnythingOfType("*splitrequest.SplitRequest")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*splitrequest.SplitRequest)
		}).Return(nil).Once()

	cancelledAt := time.Date(2024, 5, 12, 10, 30, 0, 0, time.UTC)
	cmd, err := commands.NewCancelOrderCommand("demo.example.com", "ord-1", cancelledAt)
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, discardLogger())
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, splitrequest.Cancelled, updated.Status())
	require.NotNil(t, updated.PrimaryOrderCancelledAt())
	assert.Equal(t, cancelledAt, *updated.PrimaryOrderCancelledAt())
	assert.Nil(t, updated.PaymentOrderCancelledAt())

	require.NotNil(t, stamped)
	require.NotNil(t, stamped.CancelledAt)
	assert.Equal(t, cancelledAt, *stamped.CancelledAt)
}

func TestCancelOrderCommandHandler_Handle_PaymentOrderCancelled(t *testing.T) {
	ctx := t.Context()
	request := awaitingRequest(t, "fo-1")
	requestRepo, refRepo, factory := newCancelOrderFixture()

	requestRepo.On("GetByPrimaryOrderID", ctx, "pay-1").Return(nil, errs.ErrObjectNotFound).Once()
	requestRepo.On("GetByPaymentOrderID", ctx, "pay-1").Return(request, nil).Once()
	refRepo.On("GetOrder", ctx, "pay-1").Return(nil, errs.ErrObjectNotFound).Once()

	var updated *splitrequest.SplitRequest
	requestRepo.On("Update", ctx, mock.AnythingOfType("*splitrequest.SplitRequest")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*splitrequest.SplitRequest)
		}).Return(nil).Once()

	cmd, err := commands.NewCancelOrderCommand("demo.example.com", "pay-1", time.Now())
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, discardLogger())
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, splitrequest.Cancelled, updated.Status())
	assert.NotNil(t, updated.PaymentOrderCancelledAt())
	assert.Nil(t, updated.PrimaryOrderCancelledAt())
}

func TestCancelOrderCommandHandler_Handle_UnknownOrderSkips(t *testing.T) {
	ctx := t.Context()
	requestRepo, _, factory := newCancelOrderFixture()
	requestRepo.On("GetByPrimaryOrderID", ctx, "other-1").Return(nil, errs.ErrObjectNotFound).Once()
	requestRepo.On("GetByPaymentOrderID", ctx, "other-1").Return(nil, errs.ErrObjectNotFound).Once()

	cmd, err := commands.NewCancelOrderCommand("demo.example.com", "other-1", time.Now())
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, discardLogger())
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrEventSkipped)
	requestRepo.AssertNotCalled(t, "Update")
}

func TestCancelOrderCommandHandler_Handle_TerminalRequestKeepsStatus(t *testing.T) {
	ctx := t.Context()
	request := awaitingRequest(t, "fo-1")
	require.NoError(t, request.ReleaseHold("h-fo-1"))
	require.NoError(t, request.Complete())

	requestRepo, refRepo, factory := newCancelOrderFixture()
	requestRepo.On("GetByPrimaryOrderID", ctx, "ord-1").Return(request, nil).Once()
	refRepo.On("GetOrder", ctx, "ord-1").Return(nil, errs.ErrObjectNotFound).Once()

	var updated *splitrequest.SplitRequest
	requestRepo.On("Update", ctx, mock.AnythingOfType("*splitrequest.SplitRequest")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*splitrequest.SplitRequest)
		}).Return(nil).Once()

	cmd, err := commands.NewCancelOrderCommand("demo.example.com", "ord-1", time.Now())
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, discardLogger())
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	// A completed request keeps its status; only the timestamp is stamped.
	require.NotNil(t, updated)
	assert.Equal(t, splitrequest.Completed, updated.Status())
	assert.NotNil(t, updated.PrimaryOrderCancelledAt())
}
