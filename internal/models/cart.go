// internal/models/cart.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is created lazily per user and is only ever emptied, never deleted.
// TotalItems and TotalAmount are derived from Items by Recalculate and are
// never accepted from callers.
type Cart struct {
	BaseModel
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items       []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems  int        `json:"total_items" gorm:"not null;default:0"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
}

type CartItem struct {
	RecordModel
	CartID    uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	AddedAt   time.Time `json:"added_at"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Recalculate derives TotalItems and TotalAmount from the current item set.
func (c *Cart) Recalculate() {
	totalItems := 0
	totalAmount := decimal.Zero
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalAmount = totalAmount.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalItems = totalItems
	c.TotalAmount = totalAmount.Round(2).InexactFloat64()
}

// FindItem returns the index of the line item for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
