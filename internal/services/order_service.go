// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type OrderService struct {
	db       *gorm.DB
	rules    utils.PricingRules
	notifier Notifier
	now      func() time.Time
}

type CreateOrderRequest struct {
	ShippingAddressID uuid.UUID            `json:"shipping_address_id" validate:"required"`
	PaymentMethod     models.PaymentMethod `json:"payment_method" validate:"required,payment_method"`
	CouponCode        string               `json:"coupon_code,omitempty" validate:"max=50"`
	Notes             string               `json:"notes,omitempty" validate:"max=1000"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
	Note   string             `json:"note,omitempty" validate:"max=500"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" validate:"required"`
}

type OrderFilter struct {
	utils.PaginationParams
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	UserID        *uuid.UUID
}

func NewOrderService(db *gorm.DB, rules utils.PricingRules, notifier Notifier) *OrderService {
	return &OrderService{db: db, rules: rules, notifier: notifier, now: time.Now}
}

// CreateOrder turns the user's cart into an order. Validation, the order
// insert, the stock decrement and the cart reset share one transaction, and
// the product rows stay locked from the stock check to the decrement.
//
// A coupon code is recorded on the order but no discount is applied yet.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := loadCart(tx, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return apperrors.Invalid(i18n.KeyCartEmpty)
		}

		address, err := findAddress(tx, userID, req.ShippingAddressID)
		if err != nil {
			return err
		}

		products, err := lockProducts(tx, cart.Items)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		subtotals := make([]float64, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, ok := products[line.ProductID]
			if !ok || !product.IsPurchasable() {
				return apperrors.Invalid(i18n.KeyOrderItemUnavailable, lineName(line))
			}
			if line.Quantity > product.StockQuantity {
				return apperrors.Invalid(i18n.KeyOrderInsufficient, product.Name, product.StockQuantity)
			}

			price := product.EffectivePrice()
			subtotal := utils.LineSubtotal(price, line.Quantity)
			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.MainImage(),
				Price:        price,
				Quantity:     line.Quantity,
				Subtotal:     subtotal,
			})
			subtotals = append(subtotals, subtotal)
		}

		totals := utils.ComputeOrderTotals(utils.SumMoney(subtotals...), 0, s.rules)

		number, err := utils.GenerateOrderNumber(s.now())
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:          userID,
			OrderNumber:     number,
			Items:           items,
			TotalAmount:     totals.TotalAmount,
			DiscountAmount:  totals.DiscountAmount,
			ShippingAmount:  totals.ShippingAmount,
			TaxAmount:       totals.TaxAmount,
			FinalAmount:     totals.FinalAmount,
			Status:          models.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			CouponCode:      models.NormalizeCouponCode(req.CouponCode),
			Notes:           req.Notes,
			ShippingAddress: address.Snapshot(),
		}
		if err := tx.Omit("User").Create(order).Error; err != nil {
			return err
		}

		if err := decrementStock(tx, items); err != nil {
			return err
		}

		if err := emptyCart(tx, cart); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		order.User = &user
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to create order")
	}

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"final_amount": order.FinalAmount,
	}).Info("Order created")

	user, placed := order.User, *order
	notifyAsync("order_confirmation", user.Email, func() error {
		return s.notifier.SendOrderConfirmation(user, &placed)
	})

	return order, nil
}

func (s *OrderService) GetMyOrders(ctx context.Context, userID uuid.UUID, filter OrderFilter) ([]models.Order, int64, error) {
	filter.UserID = &userID
	return s.ListOrders(ctx, filter)
}

// GetOrder loads an order with its items. Orders of other users are reported
// as missing unless the caller is an admin.
func (s *OrderService) GetOrder(ctx context.Context, userID, id uuid.UUID, isAdmin bool) (*models.Order, error) {
	return s.findOrder(ctx, userID, isAdmin, "id = ?", id)
}

func (s *OrderService) GetByOrderNumber(ctx context.Context, userID uuid.UUID, number string, isAdmin bool) (*models.Order, error) {
	return s.findOrder(ctx, userID, isAdmin, "order_number = ?", number)
}

func (s *OrderService) findOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, query string, arg interface{}) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Where(query, arg).
		First(&order).Error
	if err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyOrderNotFound), "failed to load order")
	}
	if !isAdmin && !order.BelongsTo(userID) {
		return nil, apperrors.NotFound(i18n.KeyOrderNotFound)
	}
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count orders")
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "final_amount", "status"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch orders")
	}
	return orders, total, nil
}

// CancelOrder cancels a pending or confirmed order and puts its items back
// into stock.
func (s *OrderService) CancelOrder(ctx context.Context, userID, id uuid.UUID, reason string, isAdmin bool) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !isAdmin && !order.BelongsTo(userID) {
			return apperrors.NotFound(i18n.KeyOrderNotFound)
		}
		return s.cancel(tx, order, reason)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to cancel order")
	}

	s.notifyStatus(ctx, order)
	return order, nil
}

// UpdateOrderStatus is the admin status write. Any listed status is accepted
// except that cancellation still goes through the cancel rules.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, apperrors.Invalid(i18n.KeyOrderInvalidStatus, req.Status)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, id)
		if err != nil {
			return err
		}

		if req.Status == models.OrderStatusCancelled {
			return s.cancel(tx, order, req.Note)
		}

		order.StampStatus(req.Status, s.now())
		return tx.Model(order).UpdateColumns(map[string]interface{}{
			"status":       order.Status,
			"confirmed_at": order.ConfirmedAt,
			"shipped_at":   order.ShippedAt,
			"delivered_at": order.DeliveredAt,
			"updated_at":   s.now(),
		}).Error
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to update order status")
	}

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       order.Status,
	}).Info("Order status updated")

	s.notifyStatus(ctx, order)
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.Invalid(i18n.KeyOrderInvalidPayment, status)
	}

	var order models.Order
	db := s.db.WithContext(ctx)
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyOrderNotFound), "failed to load order")
	}

	if err := db.Model(&order).UpdateColumns(map[string]interface{}{
		"payment_status": status,
		"updated_at":     s.now(),
	}).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update payment status")
	}
	order.PaymentStatus = status
	return &order, nil
}

func (s *OrderService) cancel(tx *gorm.DB, order *models.Order, reason string) error {
	if !order.Status.Cancellable() {
		return apperrors.Invalid(i18n.KeyOrderNotCancellable, order.Status)
	}

	if err := restoreStock(tx, order.Items); err != nil {
		return err
	}

	order.StampStatus(models.OrderStatusCancelled, s.now())
	order.CancellationReason = reason
	return tx.Model(order).UpdateColumns(map[string]interface{}{
		"status":              order.Status,
		"cancelled_at":        order.CancelledAt,
		"cancellation_reason": order.CancellationReason,
		"updated_at":          s.now(),
	}).Error
}

func (s *OrderService) notifyStatus(ctx context.Context, order *models.Order) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", order.UserID).Error; err != nil {
		logrus.WithError(err).WithField("order_number", order.OrderNumber).Warn("Skipping status email")
		return
	}
	order.User = &user

	snapshot := *order
	notifyAsync("order_status", user.Email, func() error {
		return s.notifier.SendOrderStatusUpdate(&user, &snapshot)
	})
}

func lockOrder(tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(i18n.KeyOrderNotFound)
		}
		return nil, err
	}
	if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// lockProducts locks the products behind the cart lines, keyed by id.
// Deleted products are absent from the result.
func lockProducts(tx *gorm.DB, lines []models.CartItem) (map[uuid.UUID]*models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := forUpdate(tx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

// decrementStock takes the ordered quantities off the shelf. Each update is
// conditional on enough stock remaining.
func decrementStock(tx *gorm.DB, items []models.OrderItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		result := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
			UpdateColumns(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity - ?", item.Quantity),
				"sold_count":     gorm.Expr("sold_count + ?", item.Quantity),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Invalid(i18n.KeyOrderInsufficient, item.ProductName, 0)
		}
		ids = append(ids, item.ProductID)
	}
	return markSoldOut(tx, ids)
}

func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumns(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity + ?", item.Quantity),
				"sold_count":     gorm.Expr("CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END", item.Quantity, item.Quantity),
			}).Error
		if err != nil {
			return err
		}
		ids = append(ids, item.ProductID)
	}
	return markRestocked(tx, ids)
}

func lineName(line models.CartItem) string {
	if line.Product != nil {
		return line.Product.Name
	}
	return line.ProductID.String()
}
