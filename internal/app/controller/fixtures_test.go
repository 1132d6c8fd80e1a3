package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
	"github.com/ikkim/manajir-storefront/pkg/util"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret"
	testSessionID = "6a0d5b3c-2f1e-4d7a-8c9b-1e2f3a4b5c6d"
)

// storeAPI is an in-memory stand-in for the storefront API.
type storeAPI struct {
	mu          sync.Mutex
	orderStatus int
	orderBody   string
	orderDelay  time.Duration
	addresses   []model.Address
}

func (s *storeAPI) handler() http.Handler {
	products := map[int64]model.CatalogProduct{
		1: {
			ID:     1,
			Name:   "Linen Dress",
			Price:  decimal.NewFromInt(100),
			Sizes:  []string{"S", "M", "L"},
			Colors: []model.ProductColor{{Name: "Red", Value: "#f00"}},
			Variants: []model.Variant{
				{ID: 501, Size: "M", Color: "Red"},
			},
		},
		2: {ID: 2, Name: "Silk Scarf", Price: decimal.RequireFromString("45.50")},
	}
	parent := int64(1)
	categories := []model.Category{
		{ID: 1, Name: "Women", Slug: "women"},
		{ID: 2, Name: "Dresses", Slug: "dresses", ParentID: &parent},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		list := []model.CatalogProduct{products[1], products[2]}
		if r.URL.Query().Get("category") == "accessories" {
			list = list[1:]
		}
		envelope(w, list)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		p, ok := products[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		envelope(w, p)
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, categories)
	})
	mux.HandleFunc("GET /addresses", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		envelope(w, s.addresses)
	})
	mux.HandleFunc("POST /addresses", func(w http.ResponseWriter, r *http.Request) {
		var input model.AddressInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		s.mu.Lock()
		defer s.mu.Unlock()
		addr := model.Address{
			ID:         int64(100 + len(s.addresses)),
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Address:    input.Address,
			City:       input.City,
			PostalCode: input.PostalCode,
			Country:    input.Country,
			IsDefault:  input.IsDefault,
		}
		s.addresses = append(s.addresses, addr)
		w.WriteHeader(http.StatusCreated)
		envelope(w, addr)
	})
	mux.HandleFunc("PATCH /addresses/{id}/set-default", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, nil)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, body, delay := s.orderStatus, s.orderBody, s.orderDelay
		s.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "ORD-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		envelope(w, model.Order{ID: "ORD-1", Status: model.OrderStatusDelivered, Total: decimal.NewFromInt(90)})
	})
	return mux
}

func (s *storeAPI) respondToOrders(status int, body string, delay time.Duration) {
	s.mu.Lock()
	s.orderStatus, s.orderBody, s.orderDelay = status, body, delay
	s.mu.Unlock()
}

func envelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(gin.H{"status": "success", "message": "ok", "data": data})
}

type controllerEnv struct {
	router *gin.Engine
	api    *storeAPI
	token  string
}

func setupControllerTest(t *testing.T) *controllerEnv {
	gin.SetMode(gin.TestMode)

	api := &storeAPI{
		orderStatus: http.StatusCreated,
		orderBody:   `{"status":"success","data":{"order":{"id":"ORD-42"}}}`,
		addresses: []model.Address{
			{ID: 10, FirstName: "Ada", LastName: "Lovelace", Address: "1 Main St", City: "London", PostalCode: "N1", Country: "UK", IsDefault: true},
		},
	}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client, err := storefrontapi.NewClient(storefrontapi.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calc := pricing.Default()
	registry := store.NewRegistry(repository.NewRedisSnapshotRepository(rdb, time.Hour))
	catalog := service.NewCatalogService(client, repository.NewRedisCatalogCache(rdb, time.Minute))
	cart := service.NewCartService(registry, catalog, calc)
	addresses := service.NewAddressService(client)

	products := NewProductController(catalog)
	carts := NewCartController(cart)
	wishlists := NewWishlistController(service.NewWishlistService(registry, catalog, cart))
	checkouts := NewCheckoutController(service.NewCheckoutService(registry, client, addresses, calc, 300*time.Millisecond))
	addressCtrl := NewAddressController(addresses)
	orders := NewOrderController(service.NewOrderService(client))
	auth := middleware.NewAuthMiddleware(testSecret)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/products", products.GetAllProducts)
	v1.GET("/products/:id", products.GetProductByID)
	v1.GET("/categories", products.GetCategories)

	shop := v1.Group("", middleware.Session(config.SessionConfig{CookieName: "sid", MaxAge: time.Hour}), auth.OptionalAuthenticate())
	shop.GET("/cart", carts.GetCart)
	shop.DELETE("/cart", carts.ClearCart)
	shop.POST("/cart/items", carts.AddToCart)
	shop.PUT("/cart/items/:product_id", carts.UpdateCartItem)
	shop.DELETE("/cart/items/:product_id", carts.RemoveFromCart)
	shop.POST("/cart/open", carts.OpenCart)
	shop.POST("/cart/close", carts.CloseCart)

	shop.GET("/wishlist", wishlists.GetWishlist)
	shop.POST("/wishlist", wishlists.AddToWishlist)
	shop.DELETE("/wishlist", wishlists.ClearWishlist)
	shop.GET("/wishlist/:product_id", wishlists.IsInWishlist)
	shop.DELETE("/wishlist/:product_id", wishlists.RemoveFromWishlist)
	shop.POST("/wishlist/:product_id/toggle", wishlists.ToggleWishlist)
	shop.POST("/wishlist/:product_id/move-to-cart", wishlists.MoveToCart)

	shop.POST("/checkout", checkouts.BeginCheckout)
	shop.GET("/checkout", checkouts.GetCheckout)
	shop.DELETE("/checkout", checkouts.DiscardCheckout)
	shop.POST("/checkout/shipping", checkouts.SubmitShipping)
	shop.POST("/checkout/shipping/edit", checkouts.EditShipping)
	shop.PUT("/checkout/payment-method", checkouts.SelectPaymentMethod)
	shop.POST("/checkout/payment", auth.Authenticate(), checkouts.SubmitPayment)
	shop.POST("/checkout/cancel", checkouts.CancelSubmission)

	private := v1.Group("", auth.Authenticate())
	private.GET("/addresses", addressCtrl.ListAddresses)
	private.POST("/addresses", addressCtrl.CreateAddress)
	private.PATCH("/addresses/:id/set-default", addressCtrl.SetDefaultAddress)
	private.GET("/orders/:id", orders.GetOrderByID)

	pair, err := util.GenerateTokenPair(7, "ada@example.com", "user", testSecret, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	return &controllerEnv{router: router, api: api, token: pair.AccessToken}
}

// do sends a request in the test session; signed requests carry the
// bearer token.
func (e *controllerEnv) do(t *testing.T, method, path string, body interface{}, signed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.SessionIDHeader, testSessionID)
	if signed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
