package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	apperrors "github.com/ikkim/manajir-storefront/internal/errors"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

// respondServiceError writes the error response for a failed service call.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, model.ErrSizeRequired):
		apperrors.BadRequest(c, apperrors.ProductSizeRequired, "Please select a size")
	case errors.Is(err, model.ErrColorRequired):
		apperrors.BadRequest(c, apperrors.ProductColorRequired, "Please select a color")
	case errors.Is(err, model.ErrInvalidSize), errors.Is(err, model.ErrInvalidColor):
		apperrors.BadRequest(c, apperrors.ProductInvalidOption, err.Error())
	case errors.Is(err, service.ErrNotInWishlist):
		apperrors.NotFound(c, apperrors.WishlistNotInList, "Product is not in your wishlist")
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
	case errors.Is(err, service.ErrAlreadyDefault):
		apperrors.Conflict(c, apperrors.AddressAlreadyDefault, "Address is already your default")
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrUnauthorized):
		apperrors.Unauthorized(c, "")
	case errors.Is(err, service.ErrUpstreamDown):
		log.Warn(action+": store API unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadGateway(c, apperrors.UpstreamUnavailable, "")
	case errors.Is(err, service.ErrUpstreamRejected):
		apperrors.RespondWithError(c, http.StatusUnprocessableEntity, apperrors.UpstreamRejected, upstreamMessage(err))
	default:
		log.Error(action, err)
		apperrors.InternalError(c, "")
	}
}

// respondBindingError lists the offending fields when the body failed
// struct validation.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed on " + fe.Tag()
	}
	apperrors.RespondWithValidationError(c, fields)
}

func upstreamMessage(err error) string {
	var apiErr *storefrontapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "The store rejected the request"
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return id, true
}
