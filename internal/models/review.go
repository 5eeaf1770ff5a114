// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

// Review rows are hard deleted so the (product, user) index frees up again.
type Review struct {
	RecordModel
	ProductID        uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user;index"`
	Rating           int       `json:"rating" gorm:"not null"`
	Title            string    `json:"title,omitempty" gorm:"size:200"`
	Comment          string    `json:"comment" gorm:"type:text"`
	VerifiedPurchase bool      `json:"verified_purchase" gorm:"not null"`
	IsApproved       bool      `json:"is_approved" gorm:"not null;index"`
	HelpfulCount     int       `json:"helpful_count" gorm:"not null;default:0"`

	// Relationships
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// RatingSummary aggregates approved reviews for one product.
type RatingSummary struct {
	ProductID     uuid.UUID     `json:"product_id"`
	AverageRating float64       `json:"average_rating"`
	TotalReviews  int64         `json:"total_reviews"`
	Distribution  map[int]int64 `json:"distribution"`
}
