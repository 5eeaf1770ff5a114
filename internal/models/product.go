// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	BaseModel
	Name        string     `json:"name" gorm:"size:100;not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string     `json:"description" gorm:"type:text"`
	ImageURL    string     `json:"image_url,omitempty" gorm:"size:500"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	IsActive    bool       `json:"is_active" gorm:"not null"`

	// Relationships
	Parent *Category `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

type Product struct {
	BaseModel
	Name          string        `json:"name" gorm:"size:255;not null"`
	SKU           string        `json:"sku" gorm:"uniqueIndex;size:100;not null"`
	Description   string        `json:"description" gorm:"type:text"`
	Price         float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPrice *float64      `json:"discount_price,omitempty" gorm:"type:decimal(10,2)"`
	StockQuantity int           `json:"stock_quantity" gorm:"not null;default:0"`
	Status        ProductStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CategoryID    uuid.UUID     `json:"category_id" gorm:"type:uuid;not null;index"`
	Brand         string        `json:"brand,omitempty" gorm:"size:100"`
	Images        StringList    `json:"images"`
	Tags          StringList    `json:"tags"`
	IsFeatured    bool          `json:"is_featured" gorm:"not null;index"`
	SoldCount     int64         `json:"sold_count" gorm:"not null;default:0"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeSave forces the out_of_stock status whenever the stock runs dry.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.ApplyStockStatus()
	return nil
}

func (p *Product) ApplyStockStatus() {
	if p.StockQuantity <= 0 {
		p.StockQuantity = 0
		p.Status = ProductStatusOutOfStock
	}
}

// EffectivePrice is the discount price when it is set and lower than the list price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice >= 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}

// MainImage returns the first image URL, or an empty string.
func (p *Product) MainImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
