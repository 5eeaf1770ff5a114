// internal/handlers/wishlist.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// GET /wishlist
func (h *WishlistHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.Get(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, wishlist, "")
}

// POST /wishlist/:productId
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.Add(c.Request.Context(), userID, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, wishlist, i18n.KeyWishlistAdded)
}

// DELETE /wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, wishlist, i18n.KeyWishlistRemoved)
}

// DELETE /wishlist
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.Clear(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, wishlist, i18n.KeyWishlistCleared)
}

// POST /wishlist/:productId/move-to-cart
// The body is optional; quantity defaults to 1.
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	var req services.MoveToCartRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	cart, err := h.wishlistService.MoveToCart(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart, i18n.KeyWishlistMoved)
}
