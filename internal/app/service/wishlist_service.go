package service

import (
	"context"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

type WishlistView struct {
	Items []model.WishlistEntry `json:"items"`
	Count int                   `json:"count"`
}

type WishlistService interface {
	GetWishlist(ctx context.Context, sessionID string) WishlistView
	AddItem(ctx context.Context, sessionID string, productID int64) (WishlistView, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) WishlistView
	ToggleItem(ctx context.Context, sessionID string, productID int64) (bool, WishlistView, error)
	Contains(ctx context.Context, sessionID string, productID int64) bool
	ClearWishlist(ctx context.Context, sessionID string) WishlistView
	MoveToCart(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) (WishlistView, CartView, error)
}

type wishlistService struct {
	registry *store.Registry
	catalog  CatalogService
	cart     CartService
}

func NewWishlistService(registry *store.Registry, catalog CatalogService, cart CartService) WishlistService {
	return &wishlistService{
		registry: registry,
		catalog:  catalog,
		cart:     cart,
	}
}

func (s *wishlistService) GetWishlist(ctx context.Context, sessionID string) WishlistView {
	return wishlistView(s.registry.Wishlist(ctx, sessionID))
}

func (s *wishlistService) AddItem(ctx context.Context, sessionID string, productID int64) (WishlistView, error) {
	wishlist := s.registry.Wishlist(ctx, sessionID)
	if wishlist.IsInWishlist(productID) {
		return wishlistView(wishlist), nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return WishlistView{}, err
	}
	wishlist.AddItem(model.NewWishlistProduct(*product))

	logger.Info("Product added to wishlist", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
	})
	return wishlistView(wishlist), nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, sessionID string, productID int64) WishlistView {
	wishlist := s.registry.Wishlist(ctx, sessionID)
	wishlist.RemoveItem(productID)
	return wishlistView(wishlist)
}

// ToggleItem only fetches the product when it has to be added.
func (s *wishlistService) ToggleItem(ctx context.Context, sessionID string, productID int64) (bool, WishlistView, error) {
	wishlist := s.registry.Wishlist(ctx, sessionID)
	if wishlist.IsInWishlist(productID) {
		wishlist.RemoveItem(productID)
		return false, wishlistView(wishlist), nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return false, WishlistView{}, err
	}
	added := wishlist.ToggleItem(model.NewWishlistProduct(*product))
	return added, wishlistView(wishlist), nil
}

func (s *wishlistService) Contains(ctx context.Context, sessionID string, productID int64) bool {
	return s.registry.Wishlist(ctx, sessionID).IsInWishlist(productID)
}

func (s *wishlistService) ClearWishlist(ctx context.Context, sessionID string) WishlistView {
	wishlist := s.registry.Wishlist(ctx, sessionID)
	wishlist.Clear()
	return wishlistView(wishlist)
}

// MoveToCart adds the product to the cart with the given selection and
// then drops it from the wishlist. A failed add leaves the wishlist as is.
func (s *wishlistService) MoveToCart(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) (WishlistView, CartView, error) {
	wishlist := s.registry.Wishlist(ctx, sessionID)
	if !wishlist.IsInWishlist(productID) {
		return WishlistView{}, CartView{}, ErrNotInWishlist
	}

	cart, err := s.cart.AddItem(ctx, sessionID, productID, size, color, quantity)
	if err != nil {
		return WishlistView{}, CartView{}, err
	}
	wishlist.RemoveItem(productID)

	logger.Info("Moved wishlist item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
	})
	return wishlistView(wishlist), cart, nil
}

func wishlistView(w *store.Wishlist) WishlistView {
	return WishlistView{Items: w.Items(), Count: w.Count()}
}
