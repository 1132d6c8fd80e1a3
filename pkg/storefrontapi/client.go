package storefrontapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client represents a storefront REST API client
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	now        func() time.Time
}

// NewClient creates a new storefront API client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		// rejected and caller-cancelled requests do not count as failures
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		config:     config,
		httpClient: httpClient,
		breaker:    breaker,
		now:        time.Now,
	}, nil
}

// ListProducts fetches the product listing
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) ([]model.CatalogProduct, error) {
	path := "/products"
	if qs := query.Encode(); qs != "" {
		path += "?" + qs
	}

	var products []model.CatalogProduct
	if err := c.getData(ctx, path, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		products[i] = model.NormalizeCatalogProduct(products[i])
	}
	return products, nil
}

// GetProduct fetches a single product
func (c *Client) GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error) {
	var product model.CatalogProduct
	if err := c.getData(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	product = model.NormalizeCatalogProduct(product)
	return &product, nil
}

// ListCategories fetches the flat category list
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.getData(ctx, "/categories", &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateOrder submits an order. The response shape varies between API
// versions, so the order id is looked up in several places.
func (c *Client) CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return model.OrderConfirmation{}, fmt.Errorf("failed to create order: %w", err)
	}

	confirmation := Confirmation(body, c.now())
	if confirmation.Synthesized {
		logger.Warn("Order response carried no id, using generated reference", map[string]interface{}{
			"order_id": confirmation.OrderID,
		})
	}
	return confirmation, nil
}

// ListOrders fetches the signed-in user's order history
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.getData(ctx, "/orders", &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches one order of the signed-in user
func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.getData(ctx, "/orders/"+id, &order); err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListAddresses fetches the saved addresses of the signed-in user
func (c *Client) ListAddresses(ctx context.Context) ([]model.Address, error) {
	var addresses []model.Address
	if err := c.getData(ctx, "/addresses", &addresses); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// CreateAddress saves a new address
func (c *Client) CreateAddress(ctx context.Context, input model.AddressInput) (*model.Address, error) {
	var address model.Address
	if err := c.sendData(ctx, http.MethodPost, "/addresses", input, &address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &address, nil
}

// UpdateAddress replaces the fields of a saved address
func (c *Client) UpdateAddress(ctx context.Context, id int64, input model.AddressInput) (*model.Address, error) {
	var address model.Address
	if err := c.sendData(ctx, http.MethodPatch, fmt.Sprintf("/addresses/%d", id), input, &address); err != nil {
		return nil, fmt.Errorf("failed to update address %d: %w", id, err)
	}
	return &address, nil
}

// DeleteAddress removes a saved address
func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/addresses/%d", id), nil); err != nil {
		return fmt.Errorf("failed to delete address %d: %w", id, err)
	}
	return nil
}

// SetDefaultAddress marks an address as the default destination
func (c *Client) SetDefaultAddress(ctx context.Context, id int64) error {
	if _, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/addresses/%d/set-default", id), nil); err != nil {
		return fmt.Errorf("failed to set default address %d: %w", id, err)
	}
	return nil
}

func (c *Client) getData(ctx context.Context, path string, dst interface{}) error {
	return c.sendData(ctx, http.MethodGet, path, nil, dst)
}

func (c *Client) sendData(ctx context.Context, method, path string, payload, dst interface{}) error {
	body, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	return decodeData(body, dst)
}

// decodeData unwraps the envelope's data field into dst. Bodies without
// an envelope are decoded as-is.
func decodeData(body []byte, dst interface{}) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		body = env.Data
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request through the circuit breaker
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetworkError, err)
	}

	logger.Debug("Storefront API call", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	var env Envelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			apiErr.kind = ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			apiErr.kind = ErrUnauthorized
		case resp.StatusCode >= 500:
			apiErr.kind = ErrUpstream
		default:
			apiErr.kind = ErrDomainFailure
		}
		return nil, apiErr
	}

	if env.Failed() {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     env.Status,
			Message:    env.Message,
			kind:       ErrDomainFailure,
		}
	}
	return body, nil
}
