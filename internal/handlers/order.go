// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func orderFilter(c *gin.Context) services.OrderFilter {
	return services.OrderFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           models.OrderStatus(c.Query("status")),
		PaymentStatus:    models.PaymentStatus(c.Query("payment_status")),
	}
}

// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, order, i18n.KeyOrderCreated)
}

// GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := orderFilter(c)
	orders, total, err := h.orderService.GetMyOrders(c.Request.Context(), userID, filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, filter.PaginationParams))
}

// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, id, utils.IsAdmin(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order, "")
}

// GET /orders/number/:orderNumber
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), userID, c.Param("orderNumber"), utils.IsAdmin(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order, "")
}

// PATCH /orders/:id/cancel and PATCH /admin/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), userID, id, req.Reason, utils.IsAdmin(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order, i18n.KeyOrderCancelled)
}

// GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	filter := orderFilter(c)
	filter.UserID = queryUUID(c, "user_id")

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, filter.PaginationParams))
}

// PATCH /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order, i18n.KeyOrderStatusUpdated)
}

// PATCH /admin/orders/:id/payment-status
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order, i18n.KeyOrderPaymentUpdated)
}
