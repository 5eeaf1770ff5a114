package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "home-kitchen", Slugify("  Home & Kitchen "))
	assert.Equal(t, "tv-s-and-audio", Slugify("TV's and Audio!!"))
}

func TestCategoryLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCategoryService(db, &fakeStorage{})

	parent, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Home & Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "home-kitchen", parent.Slug)
	assert.True(t, parent.IsActive)

	_, err = svc.Create(ctx, &CreateCategoryRequest{Name: "home kitchen"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	child, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Cookware", ParentID: &parent.ID})
	require.NoError(t, err)

	bySlug, err := svc.Get(ctx, "cookware")
	require.NoError(t, err)
	assert.Equal(t, child.ID, bySlug.ID)

	// still referenced by a child
	assert.True(t, errors.Is(svc.Delete(ctx, parent.ID), apperrors.Invalid(i18n.KeyCategoryInUse)))

	product := testutil.CreateProduct(t, db, child.ID, 10, 1)
	assert.True(t, errors.Is(svc.Delete(ctx, child.ID), apperrors.Invalid(i18n.KeyCategoryInUse)))

	require.NoError(t, db.Delete(product).Error)
	require.NoError(t, svc.Delete(ctx, child.ID))
	require.NoError(t, svc.Delete(ctx, parent.ID))

	_, err = svc.Get(ctx, "home-kitchen")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	again, err := svc.Create(ctx, &CreateCategoryRequest{Name: "Home & Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "home-kitchen", again.Slug)
}

func productRequest(categoryID models.Category, sku string, price float64, stock int) *CreateProductRequest {
	return &CreateProductRequest{
		Name:          "Desk Lamp",
		SKU:           sku,
		Price:         price,
		StockQuantity: stock,
		CategoryID:    categoryID.ID,
		Brand:         "Lumo",
	}
}

func TestProductCreateRules(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewProductService(db, &fakeStorage{})
	category := testutil.CreateCategory(t, db, "lighting")

	product, err := svc.Create(ctx, productRequest(*category, "lamp-1", 49.999, 0))
	require.NoError(t, err)
	assert.Equal(t, "LAMP-1", product.SKU)
	assert.Equal(t, 50.0, product.Price)
	// zero stock forces out_of_stock on the first save
	assert.Equal(t, models.ProductStatusOutOfStock, product.Status)

	_, err = svc.Create(ctx, productRequest(*category, "LAMP-1", 10, 1))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	missing := *category
	missing.ID = product.ID
	_, err = svc.Create(ctx, productRequest(missing, "LAMP-2", 10, 1))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	req := productRequest(*category, "LAMP-3", 10, 1)
	discount := 10.0
	req.DiscountPrice = &discount
	_, err = svc.Create(ctx, req)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyProductBadDiscount)))
}

func TestProductStockStatusOnEveryWrite(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewProductService(db, &fakeStorage{})
	category := testutil.CreateCategory(t, db, "desks")
	product := testutil.CreateProduct(t, db, category.ID, 300, 5)

	drained, err := svc.UpdateStock(ctx, product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, drained.Status)

	restocked, err := svc.UpdateStock(ctx, product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusActive, restocked.Status)

	zero := 0
	updated, err := svc.Update(ctx, product.ID, &UpdateProductRequest{StockQuantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, updated.Status)

	var stored models.Product
	testutil.Reload(t, db, &stored, product.ID)
	assert.Equal(t, models.ProductStatusOutOfStock, stored.Status)

	_, err = svc.UpdateStock(ctx, product.ID, -1)
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))
}

func TestProductSearchAndVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewProductService(db, &fakeStorage{})
	category := testutil.CreateCategory(t, db, "chairs")

	cheap := testutil.CreateProduct(t, db, category.ID, 20, 5)
	pricey := testutil.CreateProduct(t, db, category.ID, 200, 5)
	hidden := testutil.CreateProduct(t, db, category.ID, 50, 5)
	require.NoError(t, db.Model(hidden).UpdateColumn("status", models.ProductStatusInactive).Error)

	all, total, err := svc.Search(ctx, ProductFilter{PaginationParams: utils.NewPaginationParams(1, 20, "price", "asc", "")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)
	assert.Equal(t, cheap.ID, all[0].ID)

	minPrice := 100.0
	expensive, _, err := svc.Search(ctx, ProductFilter{
		PaginationParams: utils.NewPaginationParams(1, 20, "", "", ""),
		MinPrice:         &minPrice,
	})
	require.NoError(t, err)
	require.Len(t, expensive, 1)
	assert.Equal(t, pricey.ID, expensive[0].ID)

	_, err = svc.GetVisible(ctx, hidden.ID, false)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	_, err = svc.GetVisible(ctx, hidden.ID, true)
	assert.NoError(t, err)

	_, total, err = svc.Search(ctx, ProductFilter{
		PaginationParams: utils.NewPaginationParams(1, 20, "", "", ""),
		IncludeInactive:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestProductImagesAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	storage := &fakeStorage{}
	svc := NewProductService(db, storage)
	category := testutil.CreateCategory(t, db, "rugs")
	product := testutil.CreateProduct(t, db, category.ID, 99, 5)

	updated, err := svc.UploadImages(ctx, product.ID, []*multipart.FileHeader{{Filename: "front.png", Size: 10}})
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)
	added := updated.Images[1]

	updated, err = svc.DeleteImage(ctx, product.ID, added)
	require.NoError(t, err)
	assert.Len(t, updated.Images, 1)
	assert.Eventually(t, func() bool { return len(storage.deletedURLs()) == 1 }, waitFor, tick)

	_, err = svc.DeleteImage(ctx, product.ID, added)
	assert.True(t, errors.Is(err, apperrors.NotFound(i18n.KeyProductImageNotFound)))

	many := make([]*multipart.FileHeader, maxProductImages)
	for i := range many {
		many[i] = &multipart.FileHeader{Filename: "x.png", Size: 1}
	}
	_, err = svc.UploadImages(ctx, product.ID, many)
	assert.True(t, errors.Is(err, apperrors.Invalid(i18n.KeyProductTooManyImages)))

	require.NoError(t, svc.Delete(ctx, product.ID))
	_, err = svc.Get(ctx, product.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// the SKU can be reused once the product is gone
	_, err = svc.Create(ctx, productRequest(*category, product.SKU, 10, 1))
	assert.NoError(t, err)
}
