package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
)

func TestCartAddMergesLines(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "cart@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "books")
	product := testutil.CreateProduct(t, db, category.ID, 12.5, 5)

	_, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.TotalItems)
	assert.Equal(t, 62.5, cart.TotalAmount)

	// the merged quantity would exceed stock
	_, err = svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 1})
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))

	cart, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartAddRejectsMissingAndInactiveProducts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "cart2@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "toys")
	product := testutil.CreateProduct(t, db, category.ID, 10, 1)

	_, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: category.ID, Quantity: 1})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 2})
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))

	require.NoError(t, db.Model(product).UpdateColumn("status", models.ProductStatusInactive).Error)
	_, err = svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 1})
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))

	_, err = svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 0})
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))
}

func TestCartTotalsFollowEveryMutation(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "totals@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "food")
	apple := testutil.CreateProduct(t, db, category.ID, 0.1, 100)
	pear := testutil.CreateProduct(t, db, category.ID, 0.2, 100)

	_, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: apple.ID, Quantity: 3})
	require.NoError(t, err)
	cart, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: pear.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, cart.TotalAmount)
	assert.Equal(t, 4, cart.TotalItems)

	cart, err = svc.Update(ctx, user.ID, apple.ID, &UpdateCartItemRequest{Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 1.2, cart.TotalAmount)

	cart, err = svc.Remove(ctx, user.ID, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.2, cart.TotalAmount)

	cart, err = svc.Remove(ctx, user.ID, pear.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)
	assert.Equal(t, 0, cart.TotalItems)

	var stored models.Cart
	testutil.Reload(t, db, &stored, cart.ID)
	assert.Equal(t, 0.0, stored.TotalAmount)
	assert.Equal(t, 0, stored.TotalItems)

	_, err = svc.Remove(ctx, user.ID, pear.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCartGetDropsUnavailableLines(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "reconcile@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "garden")
	kept := testutil.CreateProduct(t, db, category.ID, 5, 10)
	hidden := testutil.CreateProduct(t, db, category.ID, 7, 10)
	deleted := testutil.CreateProduct(t, db, category.ID, 9, 10)

	for _, p := range []*models.Product{kept, hidden, deleted} {
		_, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)
	}

	require.NoError(t, db.Model(hidden).UpdateColumn("status", models.ProductStatusInactive).Error)
	require.NoError(t, db.Delete(deleted).Error)

	cart, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, kept.ID, cart.Items[0].ProductID)
	assert.Equal(t, 5.0, cart.TotalAmount)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestCartSyncPrices(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "sync@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "music")
	product := testutil.CreateProduct(t, db, category.ID, 40, 10)

	result, err := svc.SyncPrices(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)

	_, err = svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	result, err = svc.SyncPrices(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)

	discount := 30.0
	require.NoError(t, db.Model(product).UpdateColumn("discount_price", discount).Error)

	result, err = svc.SyncPrices(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 30.0, result.Cart.Items[0].Price)
	assert.Equal(t, 60.0, result.Cart.TotalAmount)
}

func TestCartClear(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCartService(db)

	user := testutil.CreateUser(t, db, "clear@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(t, db, "tools")
	product := testutil.CreateProduct(t, db, category.ID, 3, 10)

	_, err := svc.Add(ctx, user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0.0, cart.TotalAmount)
}
