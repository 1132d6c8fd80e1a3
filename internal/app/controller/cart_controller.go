package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	apperrors "github.com/ikkim/manajir-storefront/internal/errors"
	"github.com/ikkim/manajir-storefront/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	view := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// AddToCart adds a line or merges it into an existing one
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	view, err := ctrl.cartService.AddItem(middleware.RequestContext(c), sessionID, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		respondServiceError(c, log, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"cart":    view,
	})
}

// UpdateCartItem sets the quantity of a line
// PUT /api/v1/cart/items/:product_id?size=&color=
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	view := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c),
		productID, c.Query("size"), c.Query("color"), *req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// RemoveFromCart removes a line
// DELETE /api/v1/cart/items/:product_id?size=&color=
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	view := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c),
		productID, c.Query("size"), c.Query("color"))

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view := ctrl.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"cart":    view,
	})
}

// OpenCart opens the cart drawer
// POST /api/v1/cart/open
func (ctrl *CartController) OpenCart(c *gin.Context) {
	view := ctrl.cartService.SetOpen(c.Request.Context(), middleware.GetSessionID(c), true)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// CloseCart closes the cart drawer
// POST /api/v1/cart/close
func (ctrl *CartController) CloseCart(c *gin.Context) {
	view := ctrl.cartService.SetOpen(c.Request.Context(), middleware.GetSessionID(c), false)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}
