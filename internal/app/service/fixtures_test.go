package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the subset of the storefront API the services call.
type fakeAPI struct {
	mu          sync.Mutex
	products    map[int64]model.CatalogProduct
	categories  []model.Category
	addresses   []model.Address
	orders      []model.OrderRequest
	orderStatus int
	orderBody   string

	productHits atomic.Int32
}

func newFakeAPI() *fakeAPI {
	variantPrice := decimal.NewFromInt(110)
	parent := int64(1)
	return &fakeAPI{
		products: map[int64]model.CatalogProduct{
			1: {
				ID:     1,
				Name:   "Linen Dress",
				Brand:  "Manajir",
				Price:  decimal.NewFromInt(100),
				Sizes:  []string{"S", "M", "L"},
				Colors: []model.ProductColor{{Name: "Red", Value: "#f00"}, {Name: "Black", Value: "#000"}},
				Variants: []model.Variant{
					{ID: 501, Size: "M", Color: "Red"},
					{ID: 502, Size: "L", Color: "Black", Price: &variantPrice},
				},
			},
			2: {ID: 2, Name: "Silk Scarf", Price: decimal.RequireFromString("45.50")},
		},
		categories: []model.Category{
			{ID: 1, Name: "Women", Slug: "women"},
			{ID: 2, Name: "Dresses", Slug: "dresses", ParentID: &parent},
			{ID: 3, Name: "Accessories", Slug: "accessories"},
		},
		addresses: []model.Address{
			{ID: 10, FirstName: "Ada", LastName: "Lovelace", Address: "1 Main St", City: "London", PostalCode: "N1", Country: "UK"},
			{ID: 11, FirstName: "Ada", LastName: "Lovelace", Address: "2 Work Rd", City: "Leeds", PostalCode: "L2", Country: "UK", IsDefault: true},
		},
		orderStatus: http.StatusCreated,
		orderBody:   `{"status":"success","data":{"id":"ORD-100"}}`,
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]model.CatalogProduct, 0, len(f.products))
		for id := int64(1); id <= int64(len(f.products)); id++ {
			list = append(list, f.products[id])
		}
		writeEnvelope(w, list)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.productHits.Add(1)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		p, ok := f.products[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":"failed","message":"Product not found"}`))
			return
		}
		writeEnvelope(w, p)
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, f.categories)
	})
	mux.HandleFunc("GET /addresses", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, f.addresses)
	})
	mux.HandleFunc("PATCH /addresses/{id}/set-default", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.addresses {
			f.addresses[i].IsDefault = f.addresses[i].ID == id
		}
		writeEnvelope(w, nil)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req model.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.orders = append(f.orders, req)
		status, body := f.orderStatus, f.orderBody
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, []model.Order{{ID: "ORD-1", Status: model.OrderStatusShipped, Total: decimal.NewFromInt(285)}})
	})
	return mux
}

func (f *fakeAPI) setOrderResponse(status int, body string) {
	f.mu.Lock()
	f.orderStatus, f.orderBody = status, body
	f.mu.Unlock()
}

func (f *fakeAPI) submittedOrders() []model.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.OrderRequest(nil), f.orders...)
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "ok",
		"status":  "success",
		"data":    data,
	})
}

type testEnv struct {
	api       *fakeAPI
	client    *storefrontapi.Client
	redis     *miniredis.Miniredis
	registry  *store.Registry
	cache     repository.CatalogCache
	catalog   CatalogService
	cart      CartService
	wishlist  WishlistService
	addresses AddressService
	orders    OrderService
	checkout  CheckoutService
}

func setupServiceTest(t *testing.T) *testEnv {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client, err := storefrontapi.NewClient(storefrontapi.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	registry := store.NewRegistry(repository.NewRedisSnapshotRepository(rdb, time.Hour))
	cache := repository.NewRedisCatalogCache(rdb, time.Minute)
	calc := pricing.Default()

	catalog := NewCatalogService(client, cache)
	cart := NewCartService(registry, catalog, calc)
	addresses := NewAddressService(client)

	return &testEnv{
		api:       api,
		client:    client,
		redis:     mr,
		registry:  registry,
		cache:     cache,
		catalog:   catalog,
		cart:      cart,
		wishlist:  NewWishlistService(registry, catalog, cart),
		addresses: addresses,
		orders:    NewOrderService(client),
		checkout:  NewCheckoutService(registry, client, addresses, calc, 2*time.Second),
	}
}
