// internal/handlers/address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// GET /addresses
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, addresses, "")
}

// GET /addresses/default
func (h *AddressHandler) GetDefault(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	address, err := h.addressService.GetDefault(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, address, "")
}

// GET /addresses/:id
func (h *AddressHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	address, err := h.addressService.Get(c.Request.Context(), userID, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, address, "")
}

// POST /addresses
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.addressService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, address, i18n.KeyAddressCreated)
}

// PUT /addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.addressService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, address, i18n.KeyAddressUpdated)
}

// DELETE /addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.Delete(c.Request.Context(), userID, id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyAddressDeleted)
}

// PATCH /addresses/:id/default
func (h *AddressHandler) SetDefault(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	address, err := h.addressService.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, address, i18n.KeyAddressDefaultSet)
}
