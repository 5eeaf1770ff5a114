// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID       uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	FullName     string      `json:"full_name" gorm:"size:100;not null"`
	Phone        string      `json:"phone" gorm:"size:20;not null"`
	AddressLine1 string      `json:"address_line1" gorm:"size:255;not null"`
	AddressLine2 string      `json:"address_line2,omitempty" gorm:"size:255"`
	City         string      `json:"city" gorm:"size:100;not null"`
	State        string      `json:"state" gorm:"size:100;not null"`
	PostalCode   string      `json:"postal_code" gorm:"size:20;not null"`
	Country      string      `json:"country" gorm:"size:100;not null"`
	AddressType  AddressType `json:"address_type" gorm:"type:varchar(20);not null"`
	IsDefault    bool        `json:"is_default" gorm:"not null;index"`
}

// Snapshot copies the address fields into a value that no longer references the row.
func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}
