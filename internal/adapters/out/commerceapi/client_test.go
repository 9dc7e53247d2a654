package commerceapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"splitship/internal/adapters/out/commerceapi"
	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *commerceapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := commerceapi.NewClient(server.URL, "test-token", 1000)
	require.NoError(t, err)
	return client
}

func TestClient_SplitFulfillmentOrder(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "test-token", r.Header.Get("X-Access-Token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fulfillment_order_ids": []string{"fo-1", "fo-2"},
		})
	})

	parcels := []parcel.Parcel{
		{Items: []parcel.Item{{LineItemID: "li-1", Quantity: 2}}},
		{Items: []parcel.Item{{LineItemID: "li-2", Quantity: 1}}},
	}

	ids, err := client.SplitFulfillmentOrder(t.Context(), "ord-1", parcels)
	require.NoError(t, err)
	assert.Equal(t, []string{"fo-1", "fo-2"}, ids)
	assert.Equal(t, "/orders/ord-1/fulfillment_orders/split", gotPath)
	assert.Len(t, gotBody["parcels"], 2)
}

func TestClient_HoldFulfillmentOrders_PerItemResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"fulfillment_order_id": "fo-1", "hold_id": "h-1"},
				{"fulfillment_order_id": "fo-2", "error": "already held"},
			},
		})
	})

	results, err := client.HoldFulfillmentOrders(t.Context(), []string{"fo-1", "fo-2"}, "awaiting payment")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "h-1", results[0].HoldID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "fo-2", results[1].FulfillmentOrderID)
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "already held")
}

func TestClient_ReleaseHolds(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{{"hold_id": "h-1"}},
		})
	})

	results, err := client.ReleaseHolds(t.Context(), "fo-1", []string{"h-1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "/fulfillment_orders/fo-1/holds/release", gotPath)
}

func TestClient_DraftOrderLifecycle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/draft_orders":
			_ = json.NewEncoder(w).Encode(map[string]string{"draft_order_id": "draft-1"})
		case "/draft_orders/draft-1/complete":
			var body map[string]bool
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.True(t, body["payment_pending"])
			_ = json.NewEncoder(w).Encode(map[string]string{
				"order_id": "pay-1", "order_name": "#1001-S1",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	draftID, err := client.CreateDraftOrder(t.Context(), ports.DraftOrderSpec{
		ShopDomain:              "demo.example.com",
		CustomerID:              "cust-1",
		PrimaryOrderName:        "#1001",
		LineItemTitle:           "Additional shipping for order #1001",
		AdditionalShippingCents: 50_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "draft-1", draftID)

	completed, err := client.CompleteDraftOrder(t.Context(), "draft-1")
	require.NoError(t, err)
	assert.Equal(t, ports.CompletedOrder{OrderID: "pay-1", OrderName: "#1001-S1"}, completed)
}

func TestClient_ErrorResponseCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"customer not found"}`))
	})

	err := client.SendInvoice(t.Context(), "pay-1", "subject", "<p>body</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "customer not found")
}

func TestClient_CancelOrder(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := client.CancelOrder(t.Context(), "pay-1", "Primary order was cancelled")
	require.NoError(t, err)
	assert.Equal(t, "/orders/pay-1/cancel", gotPath)
	assert.Equal(t, "Primary order was cancelled", gotBody["reason"])
}
