// internal/services/address_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
)

// AddressService keeps at most one default address per user. Every write that
// can move the default runs in one transaction with the user's rows locked.
type AddressService struct {
	db *gorm.DB
}

type AddressRequest struct {
	FullName     string             `json:"full_name" validate:"required,max=100"`
	Phone        string             `json:"phone" validate:"required,max=20"`
	AddressLine1 string             `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string             `json:"address_line2,omitempty" validate:"max=255"`
	City         string             `json:"city" validate:"required,max=100"`
	State        string             `json:"state" validate:"required,max=100"`
	PostalCode   string             `json:"postal_code" validate:"required,max=20"`
	Country      string             `json:"country" validate:"required,max=100"`
	AddressType  models.AddressType `json:"address_type,omitempty" validate:"omitempty,address_type"`
	IsDefault    bool               `json:"is_default,omitempty"`
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch addresses")
	}
	return addresses, nil
}

func (s *AddressService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	return findAddress(s.db.WithContext(ctx), userID, id)
}

// Create stores a new address. The first address a user saves becomes the default.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	address := &models.Address{UserID: userID}
	applyAddressRequest(address, req)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		siblings, err := lockAddresses(tx, userID)
		if err != nil {
			return err
		}

		if len(siblings) == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to create address")
	}
	return address, nil
}

// Update rewrites the address fields. Setting is_default moves the default
// here; clearing it on the current default is ignored so the user keeps one.
func (s *AddressService) Update(ctx context.Context, userID, id uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var address *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAddresses(tx, userID); err != nil {
			return err
		}

		var err error
		address, err = findAddress(tx, userID, id)
		if err != nil {
			return err
		}

		wasDefault := address.IsDefault
		applyAddressRequest(address, req)
		address.IsDefault = wasDefault || req.IsDefault

		if address.IsDefault && !wasDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Save(address).Error
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to update address")
	}
	return address, nil
}

// Delete removes the address. When it was the default, the oldest remaining
// address is promoted.
func (s *AddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAddresses(tx, userID); err != nil {
			return err
		}

		address, err := findAddress(tx, userID, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(address).Error; err != nil {
			return err
		}

		if !address.IsDefault {
			return nil
		}
		_, err = promoteFirst(tx, userID)
		return err
	})
	if err != nil {
		return apperrors.FromDB(err, nil, "failed to delete address")
	}
	return nil
}

// SetDefault clears every sibling and flags id in a single transaction.
func (s *AddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	var address *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAddresses(tx, userID); err != nil {
			return err
		}

		var err error
		address, err = findAddress(tx, userID, id)
		if err != nil {
			return err
		}

		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(address).UpdateColumn("is_default", true).Error; err != nil {
			return err
		}
		address.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to set default address")
	}
	return address, nil
}

// GetDefault returns the default address, promoting the oldest address when
// none is flagged. NotFound only when the user has no addresses at all.
func (s *AddressService) GetDefault(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var address *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addresses, err := lockAddresses(tx, userID)
		if err != nil {
			return err
		}

		for i := range addresses {
			if addresses[i].IsDefault {
				address = &addresses[i]
				return nil
			}
		}

		address, err = promoteFirst(tx, userID)
		if err != nil {
			return err
		}
		if address == nil {
			return apperrors.NotFound(i18n.KeyAddressNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to load default address")
	}
	return address, nil
}

func applyAddressRequest(address *models.Address, req *AddressRequest) {
	address.FullName = req.FullName
	address.Phone = req.Phone
	address.AddressLine1 = req.AddressLine1
	address.AddressLine2 = req.AddressLine2
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.AddressType = req.AddressType
	if address.AddressType == "" {
		address.AddressType = models.AddressTypeHome
	}
	address.IsDefault = req.IsDefault
}

// lockAddresses locks every address of the user, oldest first.
func lockAddresses(tx *gorm.DB, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := forUpdate(tx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&addresses).Error
	return addresses, err
}

func findAddress(db *gorm.DB, userID, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(i18n.KeyAddressNotFound)
		}
		return nil, apperrors.Internal(err, "failed to load address")
	}
	return &address, nil
}

func clearDefault(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		UpdateColumn("is_default", false).Error
}

// promoteFirst flags the oldest remaining address as default. It returns nil
// when the user has no addresses left.
func promoteFirst(tx *gorm.DB, userID uuid.UUID) (*models.Address, error) {
	var next models.Address
	err := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&next).UpdateColumn("is_default", true).Error; err != nil {
		return nil, err
	}
	next.IsDefault = true
	return &next, nil
}
