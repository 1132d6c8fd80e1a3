package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	apperrors "github.com/ikkim/manajir-storefront/internal/errors"
	"github.com/ikkim/manajir-storefront/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

// ListAddresses returns the signed-in user's addresses
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	addresses, err := ctrl.addressService.GetAddresses(middleware.RequestContext(c))
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch addresses")
		return
	}

	log.Info("Addresses fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// CreateAddress saves a new address
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid address creation request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	address, err := ctrl.addressService.CreateAddress(middleware.RequestContext(c), req)
	if err != nil {
		respondServiceError(c, log, err, "Failed to create address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address created successfully",
		"address": address,
	})
}

// UpdateAddress replaces an address
// PATCH /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid address update request", map[string]interface{}{
			"address_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	address, err := ctrl.addressService.UpdateAddress(middleware.RequestContext(c), id, req)
	if err != nil {
		respondServiceError(c, log, err, "Failed to update address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated successfully",
		"address": address,
	})
}

// DeleteAddress deletes an address
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(middleware.RequestContext(c), id); err != nil {
		respondServiceError(c, log, err, "Failed to delete address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}

// SetDefaultAddress makes an address the default one
// PATCH /api/v1/addresses/:id/set-default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.SetDefaultAddress(middleware.RequestContext(c), id); err != nil {
		respondServiceError(c, log, err, "Failed to set default address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Default address updated",
	})
}
