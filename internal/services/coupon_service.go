// internal/services/coupon_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type CouponService struct {
	db  *gorm.DB
	now func() time.Time
}

type CreateCouponRequest struct {
	Code              string              `json:"code" validate:"required,alphanum,min=3,max=50"`
	Description       string              `json:"description,omitempty" validate:"max=500"`
	DiscountType      models.DiscountType `json:"discount_type" validate:"required,discount_type"`
	DiscountValue     float64             `json:"discount_value" validate:"required,gt=0"`
	MinPurchaseAmount float64             `json:"min_purchase_amount" validate:"gte=0"`
	MaxDiscountAmount *float64            `json:"max_discount_amount,omitempty" validate:"omitempty,gt=0"`
	UsageLimit        int                 `json:"usage_limit" validate:"required,min=1"`
	StartDate         time.Time           `json:"start_date" validate:"required"`
	ExpiryDate        time.Time           `json:"expiry_date" validate:"required"`
	IsActive          *bool               `json:"is_active,omitempty"`
}

type UpdateCouponRequest struct {
	Description       *string              `json:"description,omitempty" validate:"omitempty,max=500"`
	DiscountType      *models.DiscountType `json:"discount_type,omitempty" validate:"omitempty,discount_type"`
	DiscountValue     *float64             `json:"discount_value,omitempty" validate:"omitempty,gt=0"`
	MinPurchaseAmount *float64             `json:"min_purchase_amount,omitempty" validate:"omitempty,gte=0"`
	MaxDiscountAmount *float64             `json:"max_discount_amount,omitempty" validate:"omitempty,gt=0"`
	UsageLimit        *int                 `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	StartDate         *time.Time           `json:"start_date,omitempty"`
	ExpiryDate        *time.Time           `json:"expiry_date,omitempty"`
	IsActive          *bool                `json:"is_active,omitempty"`
}

type ValidateCouponRequest struct {
	Code      string  `json:"code" validate:"required,max=50"`
	CartTotal float64 `json:"cart_total" validate:"gte=0"`
}

type CouponValidation struct {
	CouponID       uuid.UUID           `json:"coupon_id"`
	Code           string              `json:"code"`
	DiscountType   models.DiscountType `json:"discount_type"`
	DiscountValue  float64             `json:"discount_value"`
	CartTotal      float64             `json:"cart_total"`
	DiscountAmount float64             `json:"discount_amount"`
	FinalAmount    float64             `json:"final_amount"`
}

type CouponFilter struct {
	utils.PaginationParams
	Status models.CouponStatus
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db, now: time.Now}
}

// Validate checks code against the cart total and reports the discount it
// would give. It does not consume a use; see Apply.
func (s *CouponService) Validate(ctx context.Context, code string, cartTotal float64) (*CouponValidation, error) {
	var coupon models.Coupon
	err := s.db.WithContext(ctx).
		Where("code = ? AND status = ?", models.NormalizeCouponCode(code), models.CouponStatusActive).
		First(&coupon).Error
	if err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyCouponNotFound), "failed to load coupon")
	}

	now := s.now()
	switch {
	case !coupon.HasStarted(now):
		return nil, apperrors.Invalid(i18n.KeyCouponNotStarted)
	case coupon.IsExpired(now):
		return nil, apperrors.Invalid(i18n.KeyCouponExpired)
	case coupon.IsExhausted():
		return nil, apperrors.Invalid(i18n.KeyCouponExhausted)
	case cartTotal < coupon.MinPurchaseAmount:
		return nil, apperrors.Invalid(i18n.KeyCouponMinPurchase, coupon.MinPurchaseAmount)
	}

	discount := utils.ComputeCouponDiscount(
		coupon.DiscountType == models.DiscountTypePercentage,
		coupon.DiscountValue,
		coupon.MaxDiscountAmount,
		cartTotal,
	)

	return &CouponValidation{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountType:   coupon.DiscountType,
		DiscountValue:  coupon.DiscountValue,
		CartTotal:      utils.RoundMoney(cartTotal),
		DiscountAmount: discount,
		FinalAmount:    utils.SumMoney(cartTotal, -discount),
	}, nil
}

// Apply consumes one use. The increment is guarded by used_count < usage_limit
// in the same statement, so concurrent applies cannot overrun the limit.
// Behaviour change: apply used to increment unconditionally and never
// re-checked the limit. An exhausted coupon now fails with coupon.exhausted.
func (s *CouponService) Apply(ctx context.Context, code string) (*models.Coupon, error) {
	normalized := models.NormalizeCouponCode(code)

	var coupon models.Coupon
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Coupon{}).
			Where("code = ? AND status = ? AND used_count < usage_limit", normalized, models.CouponStatusActive).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if result.Error != nil {
			return result.Error
		}

		if err := forUpdate(tx).Where("code = ?", normalized).First(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(i18n.KeyCouponNotFound)
			}
			return err
		}

		if result.RowsAffected == 0 {
			if coupon.Status == models.CouponStatusActive && coupon.IsExhausted() {
				return apperrors.Invalid(i18n.KeyCouponExhausted)
			}
			return apperrors.NotFound(i18n.KeyCouponNotFound)
		}

		previous := coupon.Status
		coupon.RefreshStatus(s.now())
		if coupon.Status != previous {
			return tx.Model(&coupon).UpdateColumn("status", coupon.Status).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromDB(err, nil, "failed to apply coupon")
	}
	return &coupon, nil
}

func (s *CouponService) Create(ctx context.Context, req *CreateCouponRequest) (*models.Coupon, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		StartDate:         req.StartDate.UTC(),
		ExpiryDate:        req.ExpiryDate.UTC(),
		Status:            models.CouponStatusActive,
	}
	if req.IsActive != nil && !*req.IsActive {
		coupon.Status = models.CouponStatusInactive
	}

	if err := checkCouponRules(coupon); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(i18n.KeyCouponExists).WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to create coupon")
	}
	return coupon, nil
}

func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyCouponNotFound), "failed to load coupon")
	}
	return &coupon, nil
}

func (s *CouponService) List(ctx context.Context, filter CouponFilter) ([]models.Coupon, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Coupon{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count coupons")
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "code", "expiry_date", "used_count"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch coupons")
	}
	return coupons, total, nil
}

// ListAvailable returns the coupons a customer could redeem right now.
func (s *CouponService) ListAvailable(ctx context.Context) ([]models.Coupon, error) {
	var candidates []models.Coupon
	if err := s.db.WithContext(ctx).
		Where("status = ? AND used_count < usage_limit", models.CouponStatusActive).
		Order("expiry_date ASC").
		Find(&candidates).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch coupons")
	}

	now := s.now()
	available := make([]models.Coupon, 0, len(candidates))
	for _, coupon := range candidates {
		if coupon.HasStarted(now) && !coupon.IsExpired(now) {
			available = append(available, coupon)
		}
	}
	return available, nil
}

// Update edits a coupon. is_active=false parks it as inactive; is_active=true
// lets the status be recomputed from dates and usage again.
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req *UpdateCouponRequest) (*models.Coupon, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.DiscountType != nil {
		coupon.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		coupon.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = *req.UsageLimit
	}
	if req.StartDate != nil {
		coupon.StartDate = req.StartDate.UTC()
	}
	if req.ExpiryDate != nil {
		coupon.ExpiryDate = req.ExpiryDate.UTC()
	}
	if req.IsActive != nil {
		if *req.IsActive {
			coupon.Status = models.CouponStatusActive
		} else {
			coupon.Status = models.CouponStatusInactive
		}
	}

	if err := checkCouponRules(coupon); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(coupon).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update coupon")
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// release the code for reuse
		if err := tx.Model(coupon).UpdateColumn("code", coupon.Code+"-DELETED-"+coupon.ID.String()[:8]).Error; err != nil {
			return err
		}
		return tx.Delete(coupon).Error
	})
	if err != nil {
		return apperrors.Internal(err, "failed to delete coupon")
	}
	return nil
}

func checkCouponRules(coupon *models.Coupon) error {
	if !coupon.ExpiryDate.After(coupon.StartDate) {
		return apperrors.Invalid(i18n.KeyCouponBadDates)
	}
	if coupon.DiscountType == models.DiscountTypePercentage && coupon.DiscountValue > 100 {
		return apperrors.Invalid(i18n.KeyCouponBadPercentage)
	}
	return nil
}
