package storefrontapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:         srv.URL + "/",
		Timeout:         2 * time.Second,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_ListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "dresses", r.URL.Query().Get("category"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = io.WriteString(w, `{"message":"ok","status":"success","data":[
			{"id":1,"name":"Linen Dress","price":"120.00","sizes":["S","M"]},
			{"id":2,"name":"Scarf","price":45.5}
		]}`)
	})

	products, err := client.ListProducts(context.Background(), ProductQuery{Category: "dresses", Page: 2})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Linen Dress", products[0].Name)
	assert.Equal(t, "45.5", products[1].Price.String())
	assert.Equal(t, model.PlaceholderImageURL, products[1].Images[0].URL)
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Product not found","status":"failed"}`)
	})

	_, err := client.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func TestClient_FailedStatusIsDomainFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Out of stock","status":"failed"}`)
	})

	_, err := client.CreateOrder(context.Background(), model.OrderRequest{})
	assert.ErrorIs(t, err, ErrDomainFailure)
	assert.False(t, IsTransient(err))
}

func TestClient_CreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req model.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.PaymentCashOnDelivery, req.PaymentMethod)
		require.Len(t, req.Items, 1)
		assert.Equal(t, int64(501), req.Items[0].VariantID)
		assert.Equal(t, 2, req.Items[0].Quantity)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":"success","data":{"order":{"id":"ORD-77"}}}`)
	})

	ctx := WithToken(context.Background(), "tok")
	confirmation, err := client.CreateOrder(ctx, model.OrderRequest{
		Items:         []model.OrderItemRequest{{VariantID: 501, Quantity: 2}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-77", confirmation.OrderID)
	assert.False(t, confirmation.Synthesized)
}

func TestClient_CreateOrder_SynthesizesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","message":"created"}`)
	})
	client.now = func() time.Time { return time.UnixMilli(42) }

	confirmation, err := client.CreateOrder(context.Background(), model.OrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", confirmation.OrderID)
	assert.True(t, confirmation.Synthesized)
}

func TestClient_BreakerOpensOnUpstreamErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.ListCategories(ctx)
		assert.ErrorIs(t, err, ErrUpstream)
	}

	_, err := client.ListCategories(ctx)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CancelledCallsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	var hold atomic.Bool
	hold.Store(true)
	arrived := make(chan struct{}, 1)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if hold.Load() {
			arrived <- struct{}{}
			<-r.Context().Done()
			return
		}
		_, _ = io.WriteString(w, `{"status":"success","data":[]}`)
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-arrived
			cancel()
		}()
		_, err := client.ListCategories(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		cancel()
	}

	hold.Store(false)
	_, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestClient_DomainFailuresDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"invalid","status":"failed"}`)
	})

	for i := 0; i < 4; i++ {
		err := client.SetDefaultAddress(context.Background(), 3)
		assert.ErrorIs(t, err, ErrDomainFailure)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestClient_Addresses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/addresses":
			_, _ = io.WriteString(w, `{"data":[{"id":1,"firstName":"Ada","isDefault":true},{"id":2,"firstName":"Bo"}]}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/addresses/2":
			_, _ = io.WriteString(w, `{"data":{"id":2,"firstName":"Bob"}}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/addresses/2":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	addresses, err := client.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.True(t, addresses[0].IsDefault)

	updated, err := client.UpdateAddress(ctx, 2, model.AddressInput{FirstName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.FirstName)

	assert.NoError(t, client.DeleteAddress(ctx, 2))
}

func TestProductQuery_Encode(t *testing.T) {
	assert.Equal(t, "", ProductQuery{}.Encode())
	assert.Equal(t, "category=men&limit=20&sortBy=price", ProductQuery{Category: "men", SortBy: "price", Limit: 20}.Encode())
}
