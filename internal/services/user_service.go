// internal/services/user_service.go
package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type UserService struct {
	db      *gorm.DB
	storage FileStorage
}

type UpdateUserProfileRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type UserFilter struct {
	utils.PaginationParams
	Role     models.UserRole
	IsActive *bool
}

func NewUserService(db *gorm.DB, storage FileStorage) *UserService {
	return &UserService{
		db:      db,
		storage: storage,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyUserNotFound), "failed to load user")
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update profile")
	}

	return s.GetUserByID(ctx, userID)
}

// UploadAvatar stores the new image and drops the previous one in the background.
func (s *UserService) UploadAvatar(ctx context.Context, userID uuid.UUID, header *multipart.FileHeader) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(ctx, header, GetDefaultUploadOptions("avatars"))
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("avatar_url", result.URL).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to save avatar")
	}
	user.AvatarURL = result.URL

	if previous != "" {
		deleteFileAsync(s.storage, previous)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count users")
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "name", "email", "last_login_at"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch users")
	}

	return users, total, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, userID uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.Invalid(i18n.KeyUserInvalidRole)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("role", role).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update role")
	}
	user.Role = role
	return user, nil
}

func (s *UserService) UpdateUserStatus(ctx context.Context, userID uuid.UUID, active bool) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("is_active", active).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update status")
	}
	user.IsActive = active
	return user, nil
}

// deleteFileAsync removes a stored file without holding up the request.
func deleteFileAsync(storage FileStorage, url string) {
	go func() {
		if err := storage.DeleteFileByURL(context.Background(), url); err != nil {
			logrus.WithError(err).WithField("url", url).Warn("Failed to delete stored file")
		}
	}()
}
