// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

const maxProductImages = 10

type ProductService struct {
	db      *gorm.DB
	storage FileStorage
}

type CreateProductRequest struct {
	Name          string               `json:"name" validate:"required,min=2,max=255"`
	SKU           string               `json:"sku" validate:"required,max=100"`
	Description   string               `json:"description,omitempty"`
	Price         float64              `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64             `json:"discount_price,omitempty" validate:"omitempty,gte=0"`
	StockQuantity int                  `json:"stock_quantity" validate:"gte=0"`
	CategoryID    uuid.UUID            `json:"category_id" validate:"required"`
	Brand         string               `json:"brand,omitempty" validate:"max=100"`
	Images        []string             `json:"images,omitempty" validate:"max=10,dive,url"`
	Tags          []string             `json:"tags,omitempty" validate:"dive,max=50"`
	IsFeatured    bool                 `json:"is_featured,omitempty"`
	Status        models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive out_of_stock"`
}

type UpdateProductRequest struct {
	Name          *string               `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	SKU           *string               `json:"sku,omitempty" validate:"omitempty,max=100"`
	Description   *string               `json:"description,omitempty"`
	Price         *float64              `json:"price,omitempty" validate:"omitempty,gt=0"`
	DiscountPrice *float64              `json:"discount_price,omitempty" validate:"omitempty,gte=0"`
	ClearDiscount bool                  `json:"clear_discount,omitempty"`
	StockQuantity *int                  `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	CategoryID    *uuid.UUID            `json:"category_id,omitempty"`
	Brand         *string               `json:"brand,omitempty" validate:"omitempty,max=100"`
	Images        []string              `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Tags          []string              `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	IsFeatured    *bool                 `json:"is_featured,omitempty"`
	Status        *models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive out_of_stock"`
}

type ProductFilter struct {
	utils.PaginationParams
	CategoryID      *uuid.UUID
	MinPrice        *float64
	MaxPrice        *float64
	Status          models.ProductStatus
	InStock         *bool
	Featured        *bool
	Brand           string
	IncludeInactive bool
}

func NewProductService(db *gorm.DB, storage FileStorage) *ProductService {
	return &ProductService{
		db:      db,
		storage: storage,
	}
}

func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, apperrors.Invalid(i18n.KeyProductBadDiscount)
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           strings.ToUpper(strings.TrimSpace(req.SKU)),
		Description:   req.Description,
		Price:         utils.RoundMoney(req.Price),
		DiscountPrice: roundOptional(req.DiscountPrice),
		StockQuantity: req.StockQuantity,
		Status:        status,
		CategoryID:    req.CategoryID,
		Brand:         req.Brand,
		Images:        models.StringList(req.Images),
		Tags:          models.StringList(req.Tags),
		IsFeatured:    req.IsFeatured,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(i18n.KeyProductSKUExists).WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to create product")
	}

	return s.Get(ctx, product.ID)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyProductNotFound), "failed to load product")
	}
	return &product, nil
}

// GetVisible hides inactive products from non-admin callers.
func (s *ProductService) GetVisible(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && product.Status == models.ProductStatusInactive {
		return nil, apperrors.NotFound(i18n.KeyProductNotFound)
	}
	return product, nil
}

func (s *ProductService) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	switch {
	case filter.Status != "":
		query = query.Where("status = ?", filter.Status)
	case !filter.IncludeInactive:
		query = query.Where("status <> ?", models.ProductStatusInactive)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?", term, term, term)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			query = query.Where("stock_quantity > 0")
		} else {
			query = query.Where("stock_quantity = 0")
		}
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(filter.Brand))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count products")
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sold_count", "stock_quantity"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var products []models.Product
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch products")
	}

	return products, total, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		product.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = utils.RoundMoney(*req.Price)
	}
	if req.ClearDiscount {
		product.DiscountPrice = nil
	} else if req.DiscountPrice != nil {
		product.DiscountPrice = roundOptional(req.DiscountPrice)
	}
	if product.DiscountPrice != nil && *product.DiscountPrice >= product.Price {
		return nil, apperrors.Invalid(i18n.KeyProductBadDiscount)
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
		product.Category = nil
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Images != nil {
		product.Images = models.StringList(req.Images)
	}
	if req.Tags != nil {
		product.Tags = models.StringList(req.Tags)
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.StockQuantity != nil {
		setStock(product, *req.StockQuantity)
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStock sets the absolute stock level. Restocking an out_of_stock
// product makes it active again; inactive products stay inactive.
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, apperrors.Invalid(i18n.KeyValidationInvalid, "stock_quantity")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setStock(product, quantity)
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func setStock(product *models.Product, quantity int) {
	product.StockQuantity = quantity
	if quantity > 0 && product.Status == models.ProductStatusOutOfStock {
		product.Status = models.ProductStatusActive
	}
}

// Delete soft deletes the product. Order items keep their own snapshot, so
// historical orders are unaffected.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// release the SKU so it can be reused
		if err := tx.Model(product).UpdateColumn("sku", product.SKU+"-DELETED-"+product.ID.String()[:8]).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		return apperrors.Internal(err, "failed to delete product")
	}
	return nil
}

func (s *ProductService) UploadImages(ctx context.Context, id uuid.UUID, headers []*multipart.FileHeader) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(headers) == 0 {
		return nil, apperrors.Invalid(i18n.KeyValidationRequired, "images")
	}
	if len(product.Images)+len(headers) > maxProductImages {
		return nil, apperrors.Invalid(i18n.KeyProductTooManyImages, maxProductImages)
	}

	options := GetDefaultUploadOptions("products")
	uploaded := make([]string, 0, len(headers))
	for _, header := range headers {
		result, err := s.storage.UploadFile(ctx, header, options)
		if err != nil {
			for _, url := range uploaded {
				deleteFileAsync(s.storage, url)
			}
			return nil, err
		}
		uploaded = append(uploaded, result.URL)
	}

	product.Images = append(product.Images, uploaded...)
	if err := s.db.WithContext(ctx).Model(product).UpdateColumn("images", product.Images).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to save product images")
	}
	return product, nil
}

func (s *ProductService) DeleteImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !product.Images.Remove(imageURL) {
		return nil, apperrors.NotFound(i18n.KeyProductImageNotFound)
	}

	if err := s.db.WithContext(ctx).Model(product).UpdateColumn("images", product.Images).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to save product images")
	}

	deleteFileAsync(s.storage, imageURL)
	return product, nil
}

func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("status = ? AND is_featured = ?", models.ProductStatusActive, true).
		Order("sold_count DESC, created_at DESC").
		Limit(clampLimit(limit, 8)).
		Preload("Category").
		Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch featured products")
	}
	return products, nil
}

// Related returns other active products from the same category.
func (s *ProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND status = ?", product.CategoryID, id, models.ProductStatusActive).
		Order("sold_count DESC, created_at DESC").
		Limit(clampLimit(limit, 4)).
		Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch related products")
	}
	return products, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Internal(err, "failed to load category")
	}
	if count == 0 {
		return apperrors.NotFound(i18n.KeyCategoryNotFound)
	}
	return nil
}

// save writes every column through the BeforeSave hook so the stock invariant holds.
func (s *ProductService) save(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict(i18n.KeyProductSKUExists).WithCause(err)
		}
		return apperrors.Internal(err, "failed to update product")
	}
	return nil
}

// markSoldOut applies the out_of_stock status to rows whose stock was changed
// by a column expression, which bypasses the model hooks.
func markSoldOut(tx *gorm.DB, productIDs []uuid.UUID) error {
	return tx.Model(&models.Product{}).
		Where("id IN ? AND stock_quantity <= 0", productIDs).
		UpdateColumns(map[string]interface{}{"status": models.ProductStatusOutOfStock, "stock_quantity": 0}).Error
}

// markRestocked reactivates out_of_stock rows that have stock again.
func markRestocked(tx *gorm.DB, productIDs []uuid.UUID) error {
	return tx.Model(&models.Product{}).
		Where("id IN ? AND stock_quantity > 0 AND status = ?", productIDs, models.ProductStatusOutOfStock).
		UpdateColumn("status", models.ProductStatusActive).Error
}

func roundOptional(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := utils.RoundMoney(*v)
	return &rounded
}

func clampLimit(limit, fallback int) int {
	if limit < 1 || limit > 50 {
		return fallback
	}
	return limit
}
