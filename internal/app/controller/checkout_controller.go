package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/checkout"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	apperrors "github.com/ikkim/manajir-storefront/internal/errors"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type PaymentMethodRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// BeginCheckout starts a fresh checkout
// POST /api/v1/checkout
func (ctrl *CheckoutController) BeginCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	view := ctrl.checkoutService.Begin(middleware.RequestContext(c), sessionID, middleware.IsAuthenticated(c))

	log.Info("Checkout started", map[string]interface{}{
		"step":  view.Step,
		"empty": view.Empty != nil,
	})

	c.JSON(http.StatusOK, gin.H{
		"checkout": view,
	})
}

// GetCheckout returns the current checkout view
// GET /api/v1/checkout
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	view := ctrl.checkoutService.View(c.Request.Context(), middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"checkout": view,
	})
}

// SubmitShipping submits the shipping form, or a saved address by addressId
// POST /api/v1/checkout/shipping
func (ctrl *CheckoutController) SubmitShipping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.ShippingAddress
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid shipping request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	view, err := ctrl.checkoutService.SubmitShipping(middleware.RequestContext(c), middleware.GetSessionID(c), req)
	if err != nil {
		respondCheckoutError(c, log, err, view)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": view,
	})
}

// EditShipping goes back from payment to shipping
// POST /api/v1/checkout/shipping/edit
func (ctrl *CheckoutController) EditShipping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.checkoutService.EditShipping(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondCheckoutError(c, log, err, view)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": view,
	})
}

// SelectPaymentMethod picks the payment method
// PUT /api/v1/checkout/payment-method
func (ctrl *CheckoutController) SelectPaymentMethod(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	view, err := ctrl.checkoutService.SelectPaymentMethod(c.Request.Context(), middleware.GetSessionID(c), req.PaymentMethod)
	if err != nil {
		respondCheckoutError(c, log, err, view)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": view,
	})
}

// SubmitPayment places the order
// POST /api/v1/checkout/payment
func (ctrl *CheckoutController) SubmitPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	view, err := ctrl.checkoutService.SubmitPayment(middleware.RequestContext(c), middleware.GetSessionID(c))
	if err != nil {
		respondCheckoutError(c, log, err, view)
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"user_id":  userID,
		"order_id": view.Receipt.OrderID,
		"total":    view.Receipt.Summary.Total.String(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  view.Notice.Message,
		"checkout": view,
	})
}

// CancelSubmission aborts an in-flight order submission
// POST /api/v1/checkout/cancel
func (ctrl *CheckoutController) CancelSubmission(c *gin.Context) {
	cancelled := ctrl.checkoutService.Cancel(middleware.GetSessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"cancelled": cancelled,
	})
}

// DiscardCheckout drops the checkout when the shopper leaves the page
// DELETE /api/v1/checkout
func (ctrl *CheckoutController) DiscardCheckout(c *gin.Context) {
	ctrl.checkoutService.Discard(middleware.GetSessionID(c))
	c.Status(http.StatusNoContent)
}

func respondCheckoutError(c *gin.Context, log *logger.Logger, err error, view checkout.View) {
	status, code := checkoutErrorStatus(err)
	if status == 0 {
		respondServiceError(c, log, err, "Checkout request failed")
		return
	}

	message := err.Error()
	if view.Notice != nil && view.Notice.Level == "error" {
		message = view.Notice.Message
	}
	if status >= http.StatusInternalServerError {
		log.Warn("Order submission failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.JSON(status, gin.H{
		"error":    code,
		"message":  message,
		"checkout": view,
	})
}

// checkoutErrorStatus returns 0 for errors that are not checkout specific.
func checkoutErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrCartEmpty):
		return http.StatusConflict, apperrors.CheckoutCartEmpty
	case errors.Is(err, checkout.ErrInvalidTransition):
		return http.StatusConflict, apperrors.CheckoutInvalidStep
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		return http.StatusConflict, apperrors.CheckoutInFlight
	case errors.Is(err, checkout.ErrPaymentMethodUnavailable):
		return http.StatusBadRequest, apperrors.CheckoutPaymentUnavailable
	case errors.Is(err, checkout.ErrInvalidShipping):
		return http.StatusBadRequest, apperrors.CheckoutShippingIncomplete
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, apperrors.CheckoutOrderFailed
	case errors.Is(err, context.Canceled):
		return http.StatusConflict, apperrors.CheckoutOrderFailed
	case errors.Is(err, storefrontapi.ErrUnauthorized):
		return http.StatusUnauthorized, apperrors.AuthUnauthorized
	case errors.Is(err, storefrontapi.ErrDomainFailure):
		return http.StatusUnprocessableEntity, apperrors.CheckoutOrderFailed
	case storefrontapi.IsTransient(err):
		return http.StatusBadGateway, apperrors.CheckoutOrderFailed
	}
	return 0, ""
}
