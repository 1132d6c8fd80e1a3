package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/internal/app/controller"
	"github.com/ikkim/manajir-storefront/internal/middleware"
)

type Router struct {
	productController  *controller.ProductController
	cartController     *controller.CartController
	wishlistController *controller.WishlistController
	checkoutController *controller.CheckoutController
	addressController  *controller.AddressController
	orderController    *controller.OrderController
	realtimeController *controller.RealtimeController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	checkoutController *controller.CheckoutController,
	addressController *controller.AddressController,
	orderController *controller.OrderController,
	realtimeController *controller.RealtimeController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:  productController,
		cartController:     cartController,
		wishlistController: wishlistController,
		checkoutController: checkoutController,
		addressController:  addressController,
		orderController:    orderController,
		realtimeController: realtimeController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	}
	router.GET("/health", health)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health)
	{
		v1.GET("/products", r.productController.GetAllProducts)
		v1.GET("/products/:id", r.productController.GetProductByID)
		v1.GET("/categories", r.productController.GetCategories)

		shop := v1.Group("")
		shop.Use(middleware.Session(r.config.Session))
		shop.Use(r.authMiddleware.OptionalAuthenticate())

		if r.realtimeController != nil {
			shop.GET("/ws", r.realtimeController.Connect)
		}

		cart := shop.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:product_id", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:product_id", r.cartController.RemoveFromCart)
			cart.POST("/open", r.cartController.OpenCart)
			cart.POST("/close", r.cartController.CloseCart)
		}

		wishlist := shop.Group("/wishlist")
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("", r.wishlistController.ClearWishlist)
			wishlist.GET("/:product_id", r.wishlistController.IsInWishlist)
			wishlist.DELETE("/:product_id", r.wishlistController.RemoveFromWishlist)
			wishlist.POST("/:product_id/toggle", r.wishlistController.ToggleWishlist)
			wishlist.POST("/:product_id/move-to-cart", r.wishlistController.MoveToCart)
		}

		checkout := shop.Group("/checkout")
		{
			checkout.POST("", r.checkoutController.BeginCheckout)
			checkout.GET("", r.checkoutController.GetCheckout)
			checkout.DELETE("", r.checkoutController.DiscardCheckout)
			checkout.POST("/shipping", r.checkoutController.SubmitShipping)
			checkout.POST("/shipping/edit", r.checkoutController.EditShipping)
			checkout.PUT("/payment-method", r.checkoutController.SelectPaymentMethod)
			checkout.POST("/payment", r.authMiddleware.Authenticate(), r.checkoutController.SubmitPayment)
			checkout.POST("/cancel", r.checkoutController.CancelSubmission)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PATCH("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PATCH("/:id/set-default", r.addressController.SetDefaultAddress)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Session-ID, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Session-ID, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
