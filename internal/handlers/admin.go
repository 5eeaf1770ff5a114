// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, stats, "")
}

// GET /admin/sales-report?from=2024-01-01&to=2024-02-01&group_by=day|month
func (h *AdminHandler) SalesReport(c *gin.Context) {
	from, okFrom := queryDate(c, "from")
	to, okTo := queryDate(c, "to")
	if !okFrom || !okTo {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyAdminInvalidRange), nil)
		return
	}

	points, err := h.adminService.GetSalesReport(c.Request.Context(), services.SalesReportRequest{
		From:    from,
		To:      to,
		GroupBy: c.DefaultQuery("group_by", services.GroupByDay),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, points, "")
}

// GET /admin/low-stock?threshold=5
func (h *AdminHandler) LowStock(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	products, total, err := h.adminService.GetLowStockProducts(c.Request.Context(), queryInt(c, "threshold", -1), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /admin/top-products
func (h *AdminHandler) TopProducts(c *gin.Context) {
	top, err := h.adminService.GetTopProducts(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, top, "")
}

// GET /admin/recent-orders
func (h *AdminHandler) RecentOrders(c *gin.Context) {
	orders, err := h.adminService.GetRecentOrders(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, orders, "")
}

// GET /admin/audit-logs
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	filter := services.AuditLogFilter{
		PaginationParams: utils.GetPaginationParams(c),
		UserID:           queryUUID(c, "user_id"),
		ResourceType:     c.Query("resource_type"),
		Action:           c.Query("action"),
	}

	logs, total, err := h.adminService.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, filter.PaginationParams))
}
