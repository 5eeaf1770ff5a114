package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

func TestAdminReports(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := NewAdminService(db, 3)
	orders := NewOrderService(db, testPricing, &fakeNotifier{})
	carts := NewCartService(db)

	user := testutil.CreateUser(t, db, "shopper@example.com", models.UserRoleCustomer)
	address := testutil.CreateAddress(t, db, user.ID, true)
	category := testutil.CreateCategory(t, db, "audio")
	speaker := testutil.CreateProduct(t, db, category.ID, 100, 10)
	headphones := testutil.CreateProduct(t, db, category.ID, 50, 2)

	place := func(product *models.Product, qty int) *models.Order {
		_, err := carts.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: qty})
		require.NoError(t, err)
		order, err := orders.CreateOrder(ctx, user.ID, &CreateOrderRequest{ShippingAddressID: address.ID, PaymentMethod: models.PaymentMethodCard})
		require.NoError(t, err)
		return order
	}

	paid := place(speaker, 3)
	_, err := orders.UpdatePaymentStatus(ctx, paid.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	place(headphones, 1)
	cancelled := place(speaker, 1)
	_, err = orders.CancelOrder(ctx, user.ID, cancelled.ID, "", false)
	require.NoError(t, err)

	stats, err := admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusCancelled])
	assert.Equal(t, paid.FinalAmount, stats.TotalRevenue)
	// headphones are down to 1
	assert.Equal(t, int64(1), stats.LowStockProducts)

	top, err := admin.GetTopProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, speaker.ID, top[0].ProductID)
	assert.Equal(t, int64(3), top[0].UnitsSold)
	assert.Equal(t, 300.0, top[0].Revenue)

	low, total, err := admin.GetLowStockProducts(ctx, -1, utils.NewPaginationParams(1, 10, "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, headphones.ID, low[0].ID)

	recent, err := admin.GetRecentOrders(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	report, err := admin.GetSalesReport(ctx, SalesReportRequest{GroupBy: GroupByDay})
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), report[0].Period)
	assert.Equal(t, int64(2), report[0].OrderCount)

	monthly, err := admin.GetSalesReport(ctx, SalesReportRequest{GroupBy: GroupByMonth})
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01"), monthly[0].Period)
}

func TestAdminSalesReportRejectsBadInput(t *testing.T) {
	admin := NewAdminService(testutil.NewDB(t), 5)
	ctx := context.Background()

	_, err := admin.GetSalesReport(ctx, SalesReportRequest{GroupBy: "week"})
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyAdminInvalidGroupBy)))

	now := time.Now()
	_, err = admin.GetSalesReport(ctx, SalesReportRequest{From: now, To: now.Add(-time.Hour)})
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyAdminInvalidRange)))
}

func TestAdminAuditLogs(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := NewAdminService(db, 5)
	user := testutil.CreateUser(t, db, "auditor@example.com", models.UserRoleAdmin)

	admin.RecordAudit(ctx, &models.AuditLog{
		UserID:       &user.ID,
		Action:       "POST /api/v1/products",
		ResourceType: "products",
		StatusCode:   201,
		Payload:      models.JSONB{"name": "Lamp"},
	})
	admin.RecordAudit(ctx, &models.AuditLog{Action: "POST /api/v1/auth/login", ResourceType: "auth", StatusCode: 401})

	logs, total, err := admin.GetAuditLogs(ctx, AuditLogFilter{
		PaginationParams: utils.NewPaginationParams(1, 10, "", "", ""),
		ResourceType:     "products",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, logs[0].User)
	assert.Equal(t, "Lamp", logs[0].Payload["name"])
}
