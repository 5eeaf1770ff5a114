// internal/services/review_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     string    `json:"title,omitempty" validate:"max=200"`
	Comment   string    `json:"comment" validate:"required,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,min=1,max=2000"`
}

type ReviewApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Create stores a review. verified_purchase is decided once here from the
// user's delivered orders and is never recomputed.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.Select("id").First(&product, "id = ?", req.ProductID).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyProductNotFound), "failed to load product")
	}

	var existing int64
	if err := db.Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", req.ProductID, userID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to check reviews")
	}
	if existing > 0 {
		return nil, apperrors.Conflict(i18n.KeyReviewExists)
	}

	verified, err := s.hasDeliveredPurchase(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID:        req.ProductID,
		UserID:           userID,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		VerifiedPurchase: verified,
		IsApproved:       true,
	}
	if err := db.Omit(clause.Associations).Create(review).Error; err != nil {
		// the unique (product, user) index catches a concurrent duplicate
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(i18n.KeyReviewExists).WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to create review")
	}
	return review, nil
}

func (s *ReviewService) hasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.OrderStatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal(err, "failed to check purchase history")
	}
	return count > 0, nil
}

// ListForProduct returns approved reviews only.
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true)
	return s.list(query, params, "User")
}

func (s *ReviewService) ListMine(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID)
	return s.list(query, params, "Product")
}

func (s *ReviewService) list(query *gorm.DB, params utils.PaginationParams, preload string) ([]models.Review, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count reviews")
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating", "helpful_count"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload(preload).Find(&reviews).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch reviews")
	}
	return reviews, total, nil
}

// GetRatingSummary aggregates approved reviews into an average and a 1..5
// distribution. A product without reviews reports zeros.
func (s *ReviewService) GetRatingSummary(ctx context.Context, productID uuid.UUID) (*models.RatingSummary, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to aggregate ratings")
	}

	summary := &models.RatingSummary{
		ProductID:    productID,
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	sum := decimal.Zero
	for _, row := range rows {
		summary.Distribution[row.Rating] = row.Count
		summary.TotalReviews += row.Count
		sum = sum.Add(decimal.NewFromInt(int64(row.Rating) * row.Count))
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = sum.Div(decimal.NewFromInt(summary.TotalReviews)).Round(1).InexactFloat64()
	}
	return summary, nil
}

func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	review, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperrors.Forbidden(i18n.KeyForbidden)
	}

	updates := map[string]interface{}{}
	if req.Rating != nil {
		review.Rating = *req.Rating
		updates["rating"] = review.Rating
	}
	if req.Title != nil {
		review.Title = *req.Title
		updates["title"] = review.Title
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
		updates["comment"] = review.Comment
	}
	if len(updates) == 0 {
		return review, nil
	}

	if err := s.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update review")
	}
	return review, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, userID, id uuid.UUID, isAdmin bool) error {
	review, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return apperrors.Forbidden(i18n.KeyForbidden)
	}

	if err := s.db.WithContext(ctx).Delete(review).Error; err != nil {
		return apperrors.Internal(err, "failed to delete review")
	}
	return nil
}

func (s *ReviewService) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*models.Review, error) {
	review, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(review).Update("is_approved", approved).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update review")
	}
	review.IsApproved = approved
	return review, nil
}

func (s *ReviewService) MarkHelpful(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	result := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND is_approved = ?", id, true).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1"))
	if result.Error != nil {
		return nil, apperrors.Internal(result.Error, "failed to update review")
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound(i18n.KeyReviewNotFound)
	}
	return s.get(ctx, id)
}

func (s *ReviewService) get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyReviewNotFound), "failed to load review")
	}
	return &review, nil
}
