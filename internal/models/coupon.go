// internal/models/coupon.go
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	BaseModel
	Code              string       `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Description       string       `json:"description,omitempty" gorm:"type:text"`
	DiscountType      DiscountType `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountValue     float64      `json:"discount_value" gorm:"type:decimal(10,2);not null"`
	MinPurchaseAmount float64      `json:"min_purchase_amount" gorm:"type:decimal(10,2);not null;default:0"`
	MaxDiscountAmount *float64     `json:"max_discount_amount,omitempty" gorm:"type:decimal(10,2)"`
	UsageLimit        int          `json:"usage_limit" gorm:"not null"`
	UsedCount         int          `json:"used_count" gorm:"not null;default:0"`
	StartDate         time.Time    `json:"start_date" gorm:"not null"`
	ExpiryDate        time.Time    `json:"expiry_date" gorm:"not null;index"`
	Status            CouponStatus `json:"status" gorm:"type:varchar(20);not null;index"`
}

// NormalizeCouponCode is applied to codes on every write and lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BeforeSave normalizes the code and recomputes the status.
func (c *Coupon) BeforeSave(tx *gorm.DB) error {
	c.Code = NormalizeCouponCode(c.Code)
	c.RefreshStatus(time.Now())
	return nil
}

// RefreshStatus derives the status from the date window and usage counters.
// An inactive coupon stays inactive; only an admin can turn it back on.
func (c *Coupon) RefreshStatus(now time.Time) {
	if c.Status == CouponStatusInactive {
		return
	}
	if c.IsExpired(now) || c.IsExhausted() {
		c.Status = CouponStatusExpired
		return
	}
	c.Status = CouponStatusActive
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate)
}

func (c *Coupon) IsExhausted() bool {
	return c.UsedCount >= c.UsageLimit
}

func (c *Coupon) HasStarted(now time.Time) bool {
	return !now.Before(c.StartDate)
}
