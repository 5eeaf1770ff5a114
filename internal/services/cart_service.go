// internal/services/cart_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
)

type CartService struct {
	db *gorm.DB
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

// SyncResult reports how many line prices changed. Updated is 0 when the
// cart was empty or already current.
type SyncResult struct {
	Cart    *models.Cart `json:"cart"`
	Updated int          `json:"updated"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart, creating it on first access. Lines whose
// product was deleted or is no longer active are dropped before returning.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = loadCart(tx, userID)
		if err != nil {
			return err
		}

		var stale []uuid.UUID
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.Product == nil || !item.Product.IsPurchasable() {
				stale = append(stale, item.ID)
				continue
			}
			kept = append(kept, item)
		}
		cart.Items = kept

		if len(stale) > 0 {
			if err := tx.Where("id IN ?", stale).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return persistTotals(tx, cart)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to load cart")
	}
	return cart, nil
}

// Add puts quantity units of a product in the cart. An existing line is
// merged and the merged quantity is checked against current stock.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req *AddToCartRequest) (*models.Cart, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = addToCart(tx, userID, req.ProductID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to add to cart")
	}
	return cart, nil
}

// Update sets the quantity of an existing line.
func (s *CartService) Update(ctx context.Context, userID, productID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = loadCart(tx, userID)
		if err != nil {
			return err
		}

		idx := cart.FindItem(productID)
		if idx < 0 {
			return apperrors.NotFound(i18n.KeyCartItemNotFound)
		}

		product, err := loadPurchasableProduct(tx, productID)
		if err != nil {
			return err
		}
		if req.Quantity > product.StockQuantity {
			return apperrors.Invalid(i18n.KeyCartInsufficient, product.StockQuantity)
		}

		item := &cart.Items[idx]
		if err := tx.Model(item).UpdateColumn("quantity", req.Quantity).Error; err != nil {
			return err
		}
		item.Quantity = req.Quantity

		return persistTotals(tx, cart)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to update cart")
	}
	return cart, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = loadCart(tx, userID)
		if err != nil {
			return err
		}

		idx := cart.FindItem(productID)
		if idx < 0 {
			return apperrors.NotFound(i18n.KeyCartItemNotFound)
		}

		if err := tx.Delete(&models.CartItem{}, "id = ?", cart.Items[idx].ID).Error; err != nil {
			return err
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		return persistTotals(tx, cart)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to remove from cart")
	}
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = loadCart(tx, userID)
		if err != nil {
			return err
		}
		return emptyCart(tx, cart)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to clear cart")
	}
	return cart, nil
}

// SyncPrices refreshes line price snapshots from the catalog's current
// effective prices. Lines whose product is not active are left untouched.
func (s *CartService) SyncPrices(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	result := &SyncResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := loadCart(tx, userID)
		if err != nil {
			return err
		}
		result.Cart = cart

		for i := range cart.Items {
			item := &cart.Items[i]
			if item.Product == nil || !item.Product.IsPurchasable() {
				continue
			}
			price := item.Product.EffectivePrice()
			if price == item.Price {
				continue
			}
			if err := tx.Model(item).UpdateColumn("price", price).Error; err != nil {
				return err
			}
			item.Price = price
			result.Updated++
		}

		if result.Updated == 0 {
			cart.Recalculate()
			return nil
		}
		return persistTotals(tx, cart)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to sync cart prices")
	}
	return result, nil
}

// loadCart locks (or lazily creates) the user's cart and loads its lines with
// their products. Soft-deleted products come back as a nil Product.
func loadCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	fresh := models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := forUpdate(tx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}

	if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Order("added_at ASC").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// addToCart merges quantity units of a product into the user's cart and
// persists the new totals.
func addToCart(tx *gorm.DB, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	cart, err := loadCart(tx, userID)
	if err != nil {
		return nil, err
	}

	product, err := loadPurchasableProduct(tx, productID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(product.ID); idx >= 0 {
		item := &cart.Items[idx]
		merged := item.Quantity + quantity
		if merged > product.StockQuantity {
			return nil, apperrors.Invalid(i18n.KeyCartInsufficient, product.StockQuantity)
		}
		if err := tx.Model(item).UpdateColumn("quantity", merged).Error; err != nil {
			return nil, err
		}
		item.Quantity = merged
	} else {
		if quantity > product.StockQuantity {
			return nil, apperrors.Invalid(i18n.KeyCartInsufficient, product.StockQuantity)
		}
		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.EffectivePrice(),
			AddedAt:   time.Now(),
		}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return nil, err
		}
		item.Product = product
		cart.Items = append(cart.Items, item)
	}

	return cart, persistTotals(tx, cart)
}

func loadPurchasableProduct(tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(i18n.KeyProductNotFound)
		}
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, apperrors.Invalid(i18n.KeyProductUnavailable)
	}
	return &product, nil
}

// persistTotals recomputes the derived totals and writes them back.
func persistTotals(tx *gorm.DB, cart *models.Cart) error {
	cart.Recalculate()
	return tx.Model(cart).UpdateColumns(map[string]interface{}{
		"total_items":  cart.TotalItems,
		"total_amount": cart.TotalAmount,
		"updated_at":   time.Now(),
	}).Error
}

func emptyCart(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	cart.Items = []models.CartItem{}
	return persistTotals(tx, cart)
}
