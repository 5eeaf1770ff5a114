// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type AdminService struct {
	db                *gorm.DB
	lowStockThreshold int
	now               func() time.Time
}

type SalesReportRequest struct {
	From    time.Time
	To      time.Time
	GroupBy string
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uuid.UUID
	ResourceType string
	Action       string
}

const (
	GroupByDay   = "day"
	GroupByMonth = "month"
)

func NewAdminService(db *gorm.DB, lowStockThreshold int) *AdminService {
	return &AdminService{
		db:                db,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{
		OrdersByStatus: make(map[models.OrderStatus]int64),
		GeneratedAt:    s.now().UTC(),
	}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to count users")
	}
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to count products")
	}
	if err := db.Model(&models.Product{}).
		Where("stock_quantity <= ?", s.lowStockThreshold).
		Count(&stats.LowStockProducts).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to count low stock products")
	}

	// Revenue counts paid orders that were not cancelled
	if err := db.Model(&models.Order{}).
		Where("status <> ? AND payment_status = ?", models.OrderStatusCancelled, models.PaymentStatusPaid).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to sum revenue")
	}
	stats.TotalRevenue = utils.RoundMoney(stats.TotalRevenue)

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to group orders")
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}
	stats.PendingOrders = stats.OrdersByStatus[models.OrderStatusPending]

	return stats, nil
}

// GetSalesReport buckets non-cancelled orders placed in [From, To) by day or month.
func (s *AdminService) GetSalesReport(ctx context.Context, req SalesReportRequest) ([]models.SalesPoint, error) {
	if req.GroupBy == "" {
		req.GroupBy = GroupByDay
	}
	if req.GroupBy != GroupByDay && req.GroupBy != GroupByMonth {
		return nil, apperrors.Invalid(i18n.KeyAdminInvalidGroupBy, req.GroupBy)
	}
	if req.To.IsZero() {
		req.To = s.now()
	}
	if req.From.IsZero() {
		req.From = req.To.AddDate(0, 0, -30)
	}
	if !req.From.Before(req.To) {
		return nil, apperrors.Invalid(i18n.KeyAdminInvalidRange)
	}

	period := periodExpr(s.db.Dialector.Name(), req.GroupBy)

	var points []models.SalesPoint
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select(period+" AS period, COUNT(*) AS order_count, COALESCE(SUM(final_amount), 0) AS revenue").
		Where("status <> ? AND created_at >= ? AND created_at < ?", models.OrderStatusCancelled, req.From.UTC(), req.To.UTC()).
		Group("period").
		Order("period ASC").
		Scan(&points).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to build sales report")
	}

	for i := range points {
		points[i].Revenue = utils.RoundMoney(points[i].Revenue)
	}
	return points, nil
}

func periodExpr(dialect, groupBy string) string {
	if dialect == "sqlite" {
		if groupBy == GroupByMonth {
			return "strftime('%Y-%m', created_at)"
		}
		return "strftime('%Y-%m-%d', created_at)"
	}
	if groupBy == GroupByMonth {
		return "to_char(created_at, 'YYYY-MM')"
	}
	return "to_char(created_at, 'YYYY-MM-DD')"
}

// GetLowStockProducts lists products at or below threshold, emptiest first.
// A threshold below zero falls back to the configured one.
func (s *AdminService) GetLowStockProducts(ctx context.Context, threshold int, params utils.PaginationParams) ([]models.Product, int64, error) {
	if threshold < 0 {
		threshold = s.lowStockThreshold
	}

	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("stock_quantity <= ?", threshold)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count products")
	}

	var products []models.Product
	if err := utils.ApplyPagination(query.Order("stock_quantity ASC, name ASC"), params).
		Preload("Category").
		Find(&products).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch products")
	}
	return products, total, nil
}

func (s *AdminService) GetTopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	limit = clampLimit(limit, 10)

	var top []models.TopProduct
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, MAX(order_items.product_name) AS product_name, "+
			"SUM(order_items.quantity) AS units_sold, SUM(order_items.subtotal) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.status <> ?", models.OrderStatusCancelled).
		Group("order_items.product_id").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to rank products")
	}

	for i := range top {
		top[i].Revenue = utils.RoundMoney(top[i].Revenue)
	}
	return top, nil
}

func (s *AdminService) GetRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	limit = clampLimit(limit, 10)

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch orders")
	}
	return orders, nil
}

// Audit trail
func (s *AdminService) RecordAudit(ctx context.Context, entry *models.AuditLog) {
	if err := s.db.WithContext(ctx).Omit("User").Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":        entry.Action,
			"resource_type": entry.ResourceType,
		}).Warn("Failed to write audit log")
	}
}

func (s *AdminService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count audit logs")
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "action", "status_code"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.AuditLog
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch audit logs")
	}
	return logs, total, nil
}
