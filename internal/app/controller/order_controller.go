package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	"github.com/ikkim/manajir-storefront/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetOrders returns the signed-in user's order history
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.GetOrders(middleware.RequestContext(c))
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one order
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	order, err := ctrl.orderService.GetOrder(middleware.RequestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}
