package splitrequest_test

import (
	"testing"
	"time"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRequest(t *testing.T) *splitrequest.SplitRequest {
	t.Helper()
	request, err := splitrequest.NewSplitRequest(
		kernel.NewUUID(), "ord-1", "demo.example.com", true, 3, "standard", 100_000, splitrequest.Pending)
	require.NoError(t, err)
	return request
}

func newHold(t *testing.T, holdID, fulfillmentOrderID string, splitRequestID kernel.UUID) *splitrequest.FulfillmentHold {
	t.Helper()
	hold, err := splitrequest.NewFulfillmentHold(holdID, fulfillmentOrderID, splitRequestID)
	require.NoError(t, err)
	return hold
}

func TestNewSplitRequest(t *testing.T) {
	t.Run("should create request with valid parameters", func(t *testing.T) {
		id := kernel.NewUUID()

		request, err := splitrequest.NewSplitRequest(
			id, "ord-1", "demo.example.com", true, 3, "standard", 100_000, splitrequest.Pending)

		require.NoError(t, err)
		assert.Equal(t, id, request.ID())
		assert.Equal(t, "ord-1", request.PrimaryOrderID())
		assert.Equal(t, "demo.example.com", request.ShopDomain())
		assert.True(t, request.UserChoice())
		assert.Equal(t, splitrequest.Pending, request.Status())
		assert.Equal(t, 3, request.CalculatedParcels())
		assert.Equal(t, "standard", request.ShippingLevel())
		assert.Equal(t, int64(100_000), request.AdditionalShippingCents())
		assert.Nil(t, request.PaymentOrderID())
		assert.Nil(t, request.DraftOrderID())
		assert.Nil(t, request.ErrorLog())
		assert.Empty(t, request.Holds())
		assert.False(t, request.CreatedAt().IsZero())
		require.NoError(t, request.Validate())
	})

	t.Run("should accept creation-time short-circuit statuses", func(t *testing.T) {
		for _, status := range []splitrequest.Status{splitrequest.AppDisabled, splitrequest.Completed} {
			request, err := splitrequest.NewSplitRequest(
				kernel.NewUUID(), "ord-1", "demo.example.com", true, 1, "standard", 0, status)

			require.NoError(t, err, status.String())
			assert.Equal(t, status, request.Status())
		}
	})

	t.Run("should reject non-initial statuses", func(t *testing.T) {
		for _, status := range []splitrequest.Status{
			splitrequest.Unknown,
			splitrequest.AwaitingPayment,
			splitrequest.Failed,
			splitrequest.Cancelled,
		} {
			_, err := splitrequest.NewSplitRequest(
				kernel.NewUUID(), "ord-1", "demo.example.com", true, 1, "standard", 0, status)

			require.Error(t, err, status.String())
		}
	})

	t.Run("should reject missing required fields", func(t *testing.T) {
		_, err := splitrequest.NewSplitRequest(
			kernel.NewUUID(), "", "demo.example.com", true, 1, "standard", 0, splitrequest.Pending)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = splitrequest.NewSplitRequest(
			kernel.NewUUID(), "ord-1", "", true, 1, "standard", 0, splitrequest.Pending)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		_, err := splitrequest.NewSplitRequest(
			kernel.NewUUID(), "ord-1", "demo.example.com", true, -1, "standard", 0, splitrequest.Pending)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = splitrequest.NewSplitRequest(
			kernel.NewUUID(), "ord-1", "demo.example.com", true, 1, "standard", -5, splitrequest.Pending)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject default constructor", func(t *testing.T) {
		var request splitrequest.SplitRequest
		assert.ErrorIs(t, request.Validate(), splitrequest.ErrSplitRequestIsNotConstructed)
	})
}

func TestSplitRequest_AwaitPayment(t *testing.T) {
	t.Run("should record order ids and clear error log", func(t *testing.T) {
		request := newPendingRequest(t)

		err := request.AwaitPayment("pay-1", "draft-1")

		require.NoError(t, err)
		assert.Equal(t, splitrequest.AwaitingPayment, request.Status())
		require.NotNil(t, request.PaymentOrderID())
		assert.Equal(t, "pay-1", *request.PaymentOrderID())
		require.NotNil(t, request.DraftOrderID())
		assert.Equal(t, "draft-1", *request.DraftOrderID())
		assert.Nil(t, request.ErrorLog())
	})

	t.Run("should require both order ids", func(t *testing.T) {
		request := newPendingRequest(t)

		assert.ErrorIs(t, request.AwaitPayment("", "draft-1"), errs.ErrValueIsRequired)
		assert.ErrorIs(t, request.AwaitPayment("pay-1", ""), errs.ErrValueIsRequired)
		assert.Equal(t, splitrequest.Pending, request.Status())
	})

	t.Run("should reject repeated finalization", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AwaitPayment("pay-1", "draft-1"))

		require.Error(t, request.AwaitPayment("pay-2", "draft-2"))
		assert.Equal(t, "pay-1", *request.PaymentOrderID())
	})
}

func TestSplitRequest_FailAndReset(t *testing.T) {
	t.Run("should record failure detail", func(t *testing.T) {
		request := newPendingRequest(t)

		err := request.Fail("hold batch partially failed")

		require.NoError(t, err)
		assert.Equal(t, splitrequest.Failed, request.Status())
		require.NotNil(t, request.ErrorLog())
		assert.Equal(t, "hold batch partially failed", *request.ErrorLog())
	})

	t.Run("failed status is sticky until reset", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Fail("boom"))

		require.Error(t, request.AwaitPayment("pay-1", "draft-1"))
		require.Error(t, request.Complete())
		assert.Equal(t, splitrequest.Failed, request.Status())
	})

	t.Run("reset clears error log and returns to Pending", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Fail("boom"))

		require.NoError(t, request.Reset())

		assert.Equal(t, splitrequest.Pending, request.Status())
		assert.Nil(t, request.ErrorLog())
	})

	t.Run("reset rejects non-failed requests", func(t *testing.T) {
		request := newPendingRequest(t)
		assert.Error(t, request.Reset())
	})
}

func TestSplitRequest_Complete(t *testing.T) {
	t.Run("should complete from AwaitingPayment", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AwaitPayment("pay-1", "draft-1"))

		require.NoError(t, request.Complete())
		assert.Equal(t, splitrequest.Completed, request.Status())
	})

	t.Run("should reject completion from Pending", func(t *testing.T) {
		request := newPendingRequest(t)
		assert.Error(t, request.Complete())
	})
}

func TestSplitRequest_Holds(t *testing.T) {
	t.Run("should attach owned holds", func(t *testing.T) {
		request := newPendingRequest(t)
		holds := []*splitrequest.FulfillmentHold{
			newHold(t, "h-1", "fo-1", request.ID()),
			newHold(t, "h-2", "fo-2", request.ID()),
		}

		require.NoError(t, request.AttachHolds(holds))

		assert.Len(t, request.Holds(), 2)
		assert.Len(t, request.ActiveHolds(), 2)
	})

	t.Run("should reject holds of another request", func(t *testing.T) {
		request := newPendingRequest(t)
		foreign := newHold(t, "h-1", "fo-1", kernel.NewUUID())

		err := request.AttachHolds([]*splitrequest.FulfillmentHold{foreign})

		require.ErrorIs(t, err, splitrequest.ErrHoldNotFound)
		assert.Empty(t, request.Holds())
	})

	t.Run("should release owned holds", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AttachHolds([]*splitrequest.FulfillmentHold{
			newHold(t, "h-1", "fo-1", request.ID()),
			newHold(t, "h-2", "fo-2", request.ID()),
		}))

		require.NoError(t, request.ReleaseHold("h-1"))

		active := request.ActiveHolds()
		require.Len(t, active, 1)
		assert.Equal(t, "h-2", active[0].HoldID())
	})

	t.Run("releasing twice is a no-op", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AttachHolds([]*splitrequest.FulfillmentHold{
			newHold(t, "h-1", "fo-1", request.ID()),
		}))

		require.NoError(t, request.ReleaseHold("h-1"))
		require.NoError(t, request.ReleaseHold("h-1"))
		assert.Empty(t, request.ActiveHolds())
	})

	t.Run("should reject unknown hold id", func(t *testing.T) {
		request := newPendingRequest(t)
		assert.ErrorIs(t, request.ReleaseHold("h-missing"), splitrequest.ErrHoldNotFound)
	})
}

func TestSplitRequest_Cancellation(t *testing.T) {
	t.Run("primary cancellation moves in-flight request to Cancelled", func(t *testing.T) {
		request := newPendingRequest(t)
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		request.MarkPrimaryOrderCancelled(at)

		assert.Equal(t, splitrequest.Cancelled, request.Status())
		require.NotNil(t, request.PrimaryOrderCancelledAt())
		assert.Equal(t, at, *request.PrimaryOrderCancelledAt())
	})

	t.Run("payment cancellation from AwaitingPayment", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AwaitPayment("pay-1", "draft-1"))

		request.MarkPaymentOrderCancelled(time.Now())

		assert.Equal(t, splitrequest.Cancelled, request.Status())
		assert.NotNil(t, request.PaymentOrderCancelledAt())
	})

	t.Run("terminal request keeps its status but still stamps", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.AwaitPayment("pay-1", "draft-1"))
		require.NoError(t, request.Complete())

		request.MarkPrimaryOrderCancelled(time.Now())

		assert.Equal(t, splitrequest.Completed, request.Status())
		assert.NotNil(t, request.PrimaryOrderCancelledAt())
	})

	t.Run("first stamp wins", func(t *testing.T) {
		request := newPendingRequest(t)
		first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		second := first.Add(time.Hour)

		request.MarkPrimaryOrderCancelled(first)
		request.MarkPrimaryOrderCancelled(second)

		assert.Equal(t, first, *request.PrimaryOrderCancelledAt())
	})
}

func TestRestoreSplitRequest(t *testing.T) {
	t.Run("should restore all fields", func(t *testing.T) {
		id := kernel.NewUUID()
		paymentOrderID := "pay-1"
		draftOrderID := "draft-1"
		createdAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
		updatedAt := createdAt.Add(time.Minute)
		hold, err := splitrequest.RestoreFulfillmentHold("h-1", "fo-1", id, true)
		require.NoError(t, err)

		request, err := splitrequest.RestoreSplitRequest(
			id, "ord-1", "demo.example.com", true, splitrequest.AwaitingPayment,
			2, "standard", 50_000, &paymentOrderID, &draftOrderID,
			nil, nil, nil, createdAt, updatedAt,
			[]*splitrequest.FulfillmentHold{hold})

		require.NoError(t, err)
		assert.Equal(t, splitrequest.AwaitingPayment, request.Status())
		assert.Equal(t, createdAt, request.CreatedAt())
		assert.Equal(t, updatedAt, request.UpdatedAt())
		require.Len(t, request.Holds(), 1)
		assert.True(t, request.Holds()[0].Released())
		assert.Empty(t, request.ActiveHolds())
	})

	t.Run("should reject invalid status", func(t *testing.T) {
		_, err := splitrequest.RestoreSplitRequest(
			kernel.NewUUID(), "ord-1", "demo.example.com", true, splitrequest.Unknown,
			2, "standard", 0, nil, nil, nil, nil, nil,
			time.Now(), time.Now(), nil)

		require.Error(t, err)
	})
}

func TestFulfillmentHold(t *testing.T) {
	t.Run("should require identifiers", func(t *testing.T) {
		_, err := splitrequest.NewFulfillmentHold("", "fo-1", kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = splitrequest.NewFulfillmentHold("h-1", "", kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = splitrequest.NewFulfillmentHold("h-1", "fo-1", kernel.UUID{})
		assert.Error(t, err)
	})
}
