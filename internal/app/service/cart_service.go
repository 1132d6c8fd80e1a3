package service

import (
	"context"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

// CartView is the cart page and drawer payload.
type CartView struct {
	Items     []model.LineItem `json:"items"`
	ItemCount int              `json:"itemCount"`
	IsOpen    bool             `json:"isOpen"`
	Summary   pricing.Summary  `json:"summary"`
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) CartView
	AddItem(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) (CartView, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) CartView
	RemoveItem(ctx context.Context, sessionID string, productID int64, size, color string) CartView
	ClearCart(ctx context.Context, sessionID string) CartView
	SetOpen(ctx context.Context, sessionID string, open bool) CartView
}

type cartService struct {
	registry *store.Registry
	catalog  CatalogService
	pricing  pricing.Calculator
}

func NewCartService(registry *store.Registry, catalog CatalogService, calc pricing.Calculator) CartService {
	return &cartService{
		registry: registry,
		catalog:  catalog,
		pricing:  calc,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) CartView {
	return s.view(s.registry.Cart(ctx, sessionID))
}

// AddItem resolves the product through the catalog and validates the
// size/color selection before the line is added.
func (s *cartService) AddItem(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) (CartView, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"size":       size,
		"color":      color,
		"quantity":   quantity,
	})

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return CartView{}, err
	}

	snapshot, err := model.NewProductSnapshot(*product, size, color)
	if err != nil {
		logger.Warn("Cannot add to cart: invalid selection", map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return CartView{}, err
	}

	cart := s.registry.Cart(ctx, sessionID)
	cart.AddItem(snapshot, size, color, quantity)
	return s.view(cart), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) CartView {
	cart := s.registry.Cart(ctx, sessionID)
	cart.UpdateQuantity(productID, size, color, quantity)
	return s.view(cart)
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID int64, size, color string) CartView {
	cart := s.registry.Cart(ctx, sessionID)
	cart.RemoveItem(productID, size, color)
	return s.view(cart)
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) CartView {
	cart := s.registry.Cart(ctx, sessionID)
	cart.Clear()

	logger.Info("Cart cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return s.view(cart)
}

func (s *cartService) SetOpen(ctx context.Context, sessionID string, open bool) CartView {
	cart := s.registry.Cart(ctx, sessionID)
	if open {
		cart.Open()
	} else {
		cart.Close()
	}
	return s.view(cart)
}

func (s *cartService) view(cart *store.Cart) CartView {
	items := cart.Items()
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return CartView{
		Items:     items,
		ItemCount: count,
		IsOpen:    cart.IsOpen(),
		Summary:   s.pricing.CartQuote(cart.Total()),
	}
}
