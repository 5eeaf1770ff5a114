package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
)

func couponRequest(code string, kind models.DiscountType, value float64) *CreateCouponRequest {
	now := time.Now().UTC()
	return &CreateCouponRequest{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: value,
		UsageLimit:    10,
		StartDate:     now.Add(-time.Hour),
		ExpiryDate:    now.Add(24 * time.Hour),
	}
}

func TestCouponValidateFixedIsCappedAtCartTotal(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	_, err := svc.Create(ctx, couponRequest("flat100", models.DiscountTypeFixed, 100))
	require.NoError(t, err)

	result, err := svc.Validate(ctx, " FLAT100 ", 50)
	require.NoError(t, err)
	assert.Equal(t, "FLAT100", result.Code)
	assert.Equal(t, 50.0, result.DiscountAmount)
	assert.Equal(t, 0.0, result.FinalAmount)

	result, err = svc.Validate(ctx, "FLAT100", 50.4)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.DiscountAmount)
	assert.Equal(t, 0.4, result.FinalAmount)

	result, err = svc.Validate(ctx, "FLAT100", 50.6)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.DiscountAmount, "rounding up past the cart total floors")
	assert.Equal(t, 0.6, result.FinalAmount)
}

func TestCouponValidatePercentage(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	req := couponRequest("SAVE15", models.DiscountTypePercentage, 15)
	maxOff := 100.0
	req.MaxDiscountAmount = &maxOff
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	result, err := svc.Validate(ctx, "save15", 333)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.DiscountAmount) // 49.95 rounded to a whole unit
	assert.Equal(t, 283.0, result.FinalAmount)

	result, err = svc.Validate(ctx, "save15", 1000)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.DiscountAmount)
}

func TestCouponValidateFailures(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	req := couponRequest("MIN500", models.DiscountTypeFixed, 50)
	req.MinPurchaseAmount = 500
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, "MIN500", 499)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyCouponMinPurchase)))

	_, err = svc.Validate(ctx, "NOPE", 1000)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// expired even though uses remain
	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = svc.Validate(ctx, "MIN500", 1000)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyCouponExpired)))

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, err = svc.Validate(ctx, "MIN500", 1000)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyCouponNotStarted)))
}

func TestCouponInactiveIsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	req := couponRequest("PAUSED", models.DiscountTypeFixed, 10)
	off := false
	req.IsActive = &off
	coupon, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.CouponStatusInactive, coupon.Status)

	_, err = svc.Validate(ctx, "PAUSED", 100)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	on := true
	coupon, err = svc.Update(ctx, coupon.ID, &UpdateCouponRequest{IsActive: &on})
	require.NoError(t, err)
	assert.Equal(t, models.CouponStatusActive, coupon.Status)

	_, err = svc.Validate(ctx, "PAUSED", 100)
	assert.NoError(t, err)
}

func TestCouponApplyStopsAtUsageLimit(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	req := couponRequest("TWICE", models.DiscountTypeFixed, 5)
	req.UsageLimit = 2
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	coupon, err := svc.Apply(ctx, "twice")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)
	assert.Equal(t, models.CouponStatusActive, coupon.Status)

	coupon, err = svc.Apply(ctx, "twice")
	require.NoError(t, err)
	assert.Equal(t, 2, coupon.UsedCount)
	assert.Equal(t, models.CouponStatusExpired, coupon.Status)

	_, err = svc.Apply(ctx, "twice")
	assert.Error(t, err)

	var stored models.Coupon
	testutil.Reload(t, db, &stored, coupon.ID)
	assert.Equal(t, 2, stored.UsedCount)

	_, err = svc.Apply(ctx, "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCouponCreateRules(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	_, err := svc.Create(ctx, couponRequest("TOOMUCH", models.DiscountTypePercentage, 120))
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyCouponBadPercentage)))

	req := couponRequest("BACKWARDS", models.DiscountTypeFixed, 10)
	req.ExpiryDate = req.StartDate.Add(-time.Minute)
	_, err = svc.Create(ctx, req)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyCouponBadDates)))

	_, err = svc.Create(ctx, couponRequest("ONCE", models.DiscountTypeFixed, 10))
	require.NoError(t, err)
	_, err = svc.Create(ctx, couponRequest("once", models.DiscountTypeFixed, 10))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCouponListAvailableAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCouponService(db)

	live, err := svc.Create(ctx, couponRequest("LIVE", models.DiscountTypeFixed, 10))
	require.NoError(t, err)

	future := couponRequest("LATER", models.DiscountTypeFixed, 10)
	future.StartDate = time.Now().Add(24 * time.Hour)
	future.ExpiryDate = time.Now().Add(48 * time.Hour)
	_, err = svc.Create(ctx, future)
	require.NoError(t, err)

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "LIVE", available[0].Code)

	require.NoError(t, svc.Delete(ctx, live.ID))
	_, err = svc.Get(ctx, live.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// the code is free again
	_, err = svc.Create(ctx, couponRequest("LIVE", models.DiscountTypeFixed, 10))
	assert.NoError(t, err)
}
