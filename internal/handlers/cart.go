// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyCartFetched)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.Add(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyCartItemAdded)
}

// PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.Update(c.Request.Context(), userID, productID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyCartItemUpdated)
}

// DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyCartItemRemoved)
}

// DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyCartCleared)
}

// POST /cart/sync
func (h *CartHandler) Sync(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.cartService.SyncPrices(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	key := i18n.KeyCartPricesUnchanged
	if result.Updated > 0 {
		key = i18n.KeyCartPricesSynced
	}
	utils.SuccessResponse(c, result, key)
}
