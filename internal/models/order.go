// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is the copy of an address taken when an order is placed.
// It is stored inline on the order so later edits to the address book do not
// change historical orders.
type ShippingAddress struct {
	FullName     string `json:"full_name" gorm:"size:100"`
	Phone        string `json:"phone" gorm:"size:20"`
	AddressLine1 string `json:"address_line1" gorm:"size:255"`
	AddressLine2 string `json:"address_line2,omitempty" gorm:"size:255"`
	City         string `json:"city" gorm:"size:100"`
	State        string `json:"state" gorm:"size:100"`
	PostalCode   string `json:"postal_code" gorm:"size:20"`
	Country      string `json:"country" gorm:"size:100"`
}

type Order struct {
	BaseModel
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;size:32;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64         `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount  float64         `json:"discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	ShippingAmount  float64         `json:"shipping_amount" gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount       float64         `json:"tax_amount" gorm:"type:decimal(12,2);not null;default:0"`
	FinalAmount     float64         `json:"final_amount" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;index"`
	CouponCode      string          `json:"coupon_code,omitempty" gorm:"size:50"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`

	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt          *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type OrderItem struct {
	RecordModel
	OrderID      uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName  string    `json:"product_name" gorm:"size:255;not null"`
	ProductImage string    `json:"product_image,omitempty" gorm:"size:500"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	Subtotal     float64   `json:"subtotal" gorm:"type:decimal(12,2);not null"`
}

// StampStatus moves the order to status and records the matching timestamp.
func (o *Order) StampStatus(status OrderStatus, at time.Time) {
	o.Status = status
	switch status {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &at
	case OrderStatusShipped:
		o.ShippedAt = &at
	case OrderStatusDelivered:
		o.DeliveredAt = &at
	case OrderStatusCancelled:
		o.CancelledAt = &at
	}
}

func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}
