package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductApplyStockStatus(t *testing.T) {
	p := &Product{StockQuantity: 0, Status: ProductStatusActive}
	p.ApplyStockStatus()
	assert.Equal(t, ProductStatusOutOfStock, p.Status)

	p = &Product{StockQuantity: -3, Status: ProductStatusActive}
	p.ApplyStockStatus()
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, ProductStatusOutOfStock, p.Status)

	p = &Product{StockQuantity: 4, Status: ProductStatusInactive}
	p.ApplyStockStatus()
	assert.Equal(t, ProductStatusInactive, p.Status)
}

func TestProductEffectivePrice(t *testing.T) {
	lower := 80.0
	higher := 120.0

	assert.Equal(t, 100.0, (&Product{Price: 100}).EffectivePrice())
	assert.Equal(t, 80.0, (&Product{Price: 100, DiscountPrice: &lower}).EffectivePrice())
	assert.Equal(t, 100.0, (&Product{Price: 100, DiscountPrice: &higher}).EffectivePrice())
}

func TestCartRecalculate(t *testing.T) {
	cart := &Cart{TotalItems: 99, TotalAmount: 12345}
	cart.Recalculate()
	assert.Equal(t, 0, cart.TotalItems)
	assert.Equal(t, 0.0, cart.TotalAmount)

	cart.Items = []CartItem{
		{ProductID: uuid.New(), Quantity: 2, Price: 10.10},
		{ProductID: uuid.New(), Quantity: 3, Price: 0.2},
	}
	cart.Recalculate()
	assert.Equal(t, 5, cart.TotalItems)
	assert.Equal(t, 20.8, cart.TotalAmount)

	cart.Items = cart.Items[:0]
	cart.Recalculate()
	assert.Equal(t, 0, cart.TotalItems)
	assert.Equal(t, 0.0, cart.TotalAmount)
}

func TestCartFindItem(t *testing.T) {
	id := uuid.New()
	cart := &Cart{Items: []CartItem{{ProductID: uuid.New()}, {ProductID: id}}}
	assert.Equal(t, 1, cart.FindItem(id))
	assert.Equal(t, -1, cart.FindItem(uuid.New()))
}

func TestCouponRefreshStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		coupon Coupon
		want   CouponStatus
	}{
		{
			name:   "active within window",
			coupon: Coupon{Status: CouponStatusActive, UsageLimit: 10, UsedCount: 1, ExpiryDate: now.Add(time.Hour)},
			want:   CouponStatusActive,
		},
		{
			name:   "expired by date",
			coupon: Coupon{Status: CouponStatusActive, UsageLimit: 10, ExpiryDate: now.Add(-time.Hour)},
			want:   CouponStatusExpired,
		},
		{
			name:   "exhausted by count",
			coupon: Coupon{Status: CouponStatusActive, UsageLimit: 2, UsedCount: 2, ExpiryDate: now.Add(time.Hour)},
			want:   CouponStatusExpired,
		},
		{
			name:   "inactive is never reactivated",
			coupon: Coupon{Status: CouponStatusInactive, UsageLimit: 10, ExpiryDate: now.Add(time.Hour)},
			want:   CouponStatusInactive,
		},
		{
			name:   "expired coupon revived by new window",
			coupon: Coupon{Status: CouponStatusExpired, UsageLimit: 10, ExpiryDate: now.Add(time.Hour)},
			want:   CouponStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.coupon
			c.RefreshStatus(now)
			assert.Equal(t, tt.want, c.Status)
		})
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCouponCode("  save10 "))
}

func TestOrderStampStatus(t *testing.T) {
	now := time.Now()
	order := &Order{Status: OrderStatusShipped}

	order.StampStatus(OrderStatusDelivered, now)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, OrderStatusDelivered, order.Status)
	assert.True(t, order.DeliveredAt.Equal(now))
	assert.Nil(t, order.CancelledAt)
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"a", "b", "a"}
	v, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b","a"}`, v)

	var scanned StringList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, list, scanned)

	assert.True(t, scanned.Remove("a"))
	assert.Equal(t, StringList{"b"}, scanned)
	assert.False(t, scanned.Remove("zzz"))

	empty, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)

	withComma := StringList{"https://cdn.example.com/a,b.jpg"}
	v, err = withComma.Value()
	require.NoError(t, err)
	var back StringList
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, withComma, back)
}

func TestAddressSnapshotIsDetached(t *testing.T) {
	addr := &Address{FullName: "Asha", City: "Pune"}
	snap := addr.Snapshot()
	addr.City = "Mumbai"
	assert.Equal(t, "Pune", snap.City)
}
