package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	apperrors "github.com/ikkim/manajir-storefront/internal/errors"
	"github.com/ikkim/manajir-storefront/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

type MoveToCartRequest struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// GetWishlist returns the session's wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	view := ctrl.wishlistService.GetWishlist(c.Request.Context(), middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"wishlist": view,
	})
}

// AddToWishlist adds a product; adding twice is a no-op
// POST /api/v1/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to wishlist request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	view, err := ctrl.wishlistService.AddItem(middleware.RequestContext(c), middleware.GetSessionID(c), req.ProductID)
	if err != nil {
		respondServiceError(c, log, err, "Failed to add to wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Added to wishlist",
		"wishlist": view,
	})
}

// IsInWishlist reports whether a product is saved
// GET /api/v1/wishlist/:product_id
func (ctrl *WishlistController) IsInWishlist(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":  productID,
		"in_wishlist": ctrl.wishlistService.Contains(c.Request.Context(), middleware.GetSessionID(c), productID),
	})
}

// RemoveFromWishlist removes a product
// DELETE /api/v1/wishlist/:product_id
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	view := ctrl.wishlistService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), productID)
	c.JSON(http.StatusOK, gin.H{
		"wishlist": view,
	})
}

// ToggleWishlist adds the product if absent and removes it otherwise
// POST /api/v1/wishlist/:product_id/toggle
func (ctrl *WishlistController) ToggleWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	added, view, err := ctrl.wishlistService.ToggleItem(middleware.RequestContext(c), middleware.GetSessionID(c), productID)
	if err != nil {
		respondServiceError(c, log, err, "Failed to toggle wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"in_wishlist": added,
		"wishlist":    view,
	})
}

// MoveToCart moves a saved product into the cart
// POST /api/v1/wishlist/:product_id/move-to-cart
func (ctrl *WishlistController) MoveToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	var req MoveToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
			return
		}
	}

	wishlist, cart, err := ctrl.wishlistService.MoveToCart(middleware.RequestContext(c), middleware.GetSessionID(c),
		productID, req.Size, req.Color, req.Quantity)
	if err != nil {
		respondServiceError(c, log, err, "Failed to move item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Moved to cart",
		"wishlist": wishlist,
		"cart":     cart,
	})
}

// ClearWishlist empties the wishlist
// DELETE /api/v1/wishlist
func (ctrl *WishlistController) ClearWishlist(c *gin.Context) {
	view := ctrl.wishlistService.ClearWishlist(c.Request.Context(), middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"wishlist": view,
	})
}
