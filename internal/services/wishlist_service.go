// internal/services/wishlist_service.go
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

type WishlistService struct {
	db *gorm.DB
}

type MoveToCartRequest struct {
	Quantity int `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// Get returns the user's wishlist. Entries for deleted products are pruned.
func (s *WishlistService) Get(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wishlist, err = loadWishlist(tx, userID)
		if err != nil {
			return err
		}

		var stale []uuid.UUID
		kept := wishlist.Items[:0]
		for _, item := range wishlist.Items {
			if item.Product == nil {
				stale = append(stale, item.ID)
				continue
			}
			kept = append(kept, item)
		}
		wishlist.Items = kept

		if len(stale) == 0 {
			return nil
		}
		return tx.Where("id IN ?", stale).Delete(&models.WishlistItem{}).Error
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to load wishlist")
	}
	return wishlist, nil
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wishlist, err = loadWishlist(tx, userID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return apperrors.FromDB(err, apperrors.NotFound(i18n.KeyProductNotFound), "failed to load product")
		}

		for _, item := range wishlist.Items {
			if item.ProductID == productID {
				return apperrors.Conflict(i18n.KeyWishlistExists)
			}
		}

		item := models.WishlistItem{
			WishlistID: wishlist.ID,
			ProductID:  productID,
			AddedAt:    time.Now(),
		}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(i18n.KeyWishlistExists).WithCause(err)
			}
			return err
		}
		item.Product = &product
		wishlist.Items = append(wishlist.Items, item)
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to add to wishlist")
	}
	return wishlist, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wishlist, err = loadWishlist(tx, userID)
		if err != nil {
			return err
		}
		return removeWishlistItem(tx, wishlist, productID)
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to remove from wishlist")
	}
	return wishlist, nil
}

func (s *WishlistService) Clear(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wishlist, err = loadWishlist(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("wishlist_id = ?", wishlist.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		wishlist.Items = []models.WishlistItem{}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to clear wishlist")
	}
	return wishlist, nil
}

// MoveToCart adds the product to the cart with the same checks as a normal
// cart add, then drops it from the wishlist. Both happen or neither does.
func (s *WishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, err := loadWishlist(tx, userID)
		if err != nil {
			return err
		}
		if err := removeWishlistItem(tx, wishlist, productID); err != nil {
			return err
		}

		cart, err = addToCart(tx, userID, productID, quantity)
		return err
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to move item to cart")
	}
	return cart, nil
}

// loadWishlist locks (or lazily creates) the user's wishlist with its items.
func loadWishlist(tx *gorm.DB, userID uuid.UUID) (*models.Wishlist, error) {
	fresh := models.Wishlist{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var wishlist models.Wishlist
	if err := forUpdate(tx).Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}

	if err := tx.Preload("Product").Where("wishlist_id = ?", wishlist.ID).Order("added_at DESC").Find(&wishlist.Items).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func removeWishlistItem(tx *gorm.DB, wishlist *models.Wishlist, productID uuid.UUID) error {
	for i, item := range wishlist.Items {
		if item.ProductID != productID {
			continue
		}
		if err := tx.Delete(&models.WishlistItem{}, "id = ?", item.ID).Error; err != nil {
			return err
		}
		wishlist.Items = append(wishlist.Items[:i], wishlist.Items[i+1:]...)
		return nil
	}
	return apperrors.NotFound(i18n.KeyWishlistNotFound)
}
