// internal/handlers/coupon.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// POST /coupons/validate
func (h *CouponHandler) Validate(c *gin.Context) {
	var req services.ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	validation, err := h.couponService.Validate(c.Request.Context(), req.Code, req.CartTotal)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, validation, i18n.KeyCouponValid)
}

// GET /coupons/available
func (h *CouponHandler) ListAvailable(c *gin.Context) {
	coupons, err := h.couponService.ListAvailable(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, coupons, "")
}

// POST /coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req services.CreateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, coupon, i18n.KeyCouponCreated)
}

// GET /coupons
func (h *CouponHandler) List(c *gin.Context) {
	filter := services.CouponFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           models.CouponStatus(c.Query("status")),
	}

	coupons, total, err := h.couponService.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(coupons, total, filter.PaginationParams))
}

// GET /coupons/:id
func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, coupon, "")
}

// PUT /coupons/:id
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.couponService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, coupon, i18n.KeyCouponUpdated)
}

// DELETE /coupons/:id
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyCouponDeleted)
}
