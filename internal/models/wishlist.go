// internal/models/wishlist.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Wishlist struct {
	BaseModel
	UserID uuid.UUID      `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items  []WishlistItem `json:"items" gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

type WishlistItem struct {
	RecordModel
	WishlistID uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_list_product"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_list_product"`
	AddedAt    time.Time `json:"added_at"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
