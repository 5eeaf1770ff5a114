// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
)

type CategoryService struct {
	db      *gorm.DB
	storage FileStorage
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=100"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	ImageURL    string     `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func NewCategoryService(db *gorm.DB, storage FileStorage) *CategoryService {
	return &CategoryService{
		db:      db,
		storage: storage,
	}
}

func (s *CategoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	slug := Slugify(req.Name)
	if slug == "" {
		return nil, apperrors.Invalid(i18n.KeyValidationInvalid, "name")
	}

	if req.ParentID != nil {
		if _, err := s.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(i18n.KeyCategoryExists).WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to create category")
	}

	return category, nil
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch categories")
	}
	return categories, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Parent").First(&category, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyCategoryNotFound), "failed to load category")
	}
	return &category, nil
}

// Get resolves either a UUID or a slug.
func (s *CategoryService) Get(ctx context.Context, idOrSlug string) (*models.Category, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.GetByID(ctx, id)
	}

	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Parent").First(&category, "slug = ?", strings.ToLower(idOrSlug)).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyCategoryNotFound), "failed to load category")
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		slug := Slugify(*req.Name)
		if slug == "" {
			return nil, apperrors.Invalid(i18n.KeyValidationInvalid, "name")
		}
		updates["name"] = strings.TrimSpace(*req.Name)
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperrors.Invalid(i18n.KeyValidationInvalid, "parent_id")
		}
		if _, err := s.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Conflict(i18n.KeyCategoryExists).WithCause(err)
			}
			return nil, apperrors.Internal(err, "failed to update category")
		}
	}

	return s.GetByID(ctx, id)
}

// Delete refuses while products or sub-categories still point at the category.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var productCount, childCount int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return apperrors.Internal(err, "failed to count products")
	}
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return apperrors.Internal(err, "failed to count sub-categories")
	}
	if productCount > 0 || childCount > 0 {
		return apperrors.Invalid(i18n.KeyCategoryInUse)
	}

	// Free the slug for reuse before soft deleting.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(category).UpdateColumn("slug", category.Slug+"-deleted-"+category.ID.String()[:8]).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	}); err != nil {
		return apperrors.Internal(err, "failed to delete category")
	}
	return nil
}

func (s *CategoryService) UploadImage(ctx context.Context, id uuid.UUID, header *multipart.FileHeader) (*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(ctx, header, GetDefaultUploadOptions("categories"))
	if err != nil {
		return nil, err
	}

	previous := category.ImageURL
	if err := s.db.WithContext(ctx).Model(category).UpdateColumn("image_url", result.URL).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to save category image")
	}
	category.ImageURL = result.URL

	if previous != "" {
		deleteFileAsync(s.storage, previous)
	}
	return category, nil
}
