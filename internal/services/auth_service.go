// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/config"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier Notifier
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifier Notifier) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Phone:    req.Phone,
		Role:     models.UserRoleCustomer,
		IsActive: true,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal(err, "failed to hash password")
	}

	// The unique index on email decides races between concurrent sign-ups.
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(i18n.KeyAuthEmailExists).WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to create user")
	}

	notifyAsync("welcome", user.Email, func() error {
		return s.notifier.SendWelcomeEmail(user)
	})

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized(i18n.KeyAuthInvalidCredentials)
		}
		return nil, apperrors.Internal(err, "failed to load user")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.Unauthorized(i18n.KeyAuthInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden(i18n.KeyAuthAccountInactive)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to stamp last login")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(i18n.KeyAuthInvalidToken).WithCause(err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized(i18n.KeyAuthInvalidToken)
		}
		return nil, apperrors.Internal(err, "failed to load user")
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden(i18n.KeyAuthAccountInactive)
	}

	return s.issueTokens(&user)
}

// ForgotPassword never reveals whether the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Internal(err, "failed to load user")
	}

	token, hash, err := utils.GenerateResetToken()
	if err != nil {
		return apperrors.Internal(err, "failed to generate reset token")
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":       hash,
		"reset_token_expires_at": expiresAt,
	}).Error; err != nil {
		return apperrors.Internal(err, "failed to save reset token")
	}

	notifyAsync("password_reset", user.Email, func() error {
		return s.notifier.SendPasswordResetEmail(&user, token)
	})

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("reset_token_hash = ?", utils.HashString(req.Token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Invalid(i18n.KeyAuthResetTokenInvalid)
		}
		return apperrors.Internal(err, "failed to load user")
	}

	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return apperrors.Invalid(i18n.KeyAuthResetTokenInvalid)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperrors.Internal(err, "failed to hash password")
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":          user.PasswordHash,
		"reset_token_hash":       "",
		"reset_token_expires_at": nil,
	}).Error; err != nil {
		return apperrors.Internal(err, "failed to reset password")
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return apperrors.Invalid(i18n.KeyAuthWrongPassword)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperrors.Internal(err, "failed to hash password")
	}

	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("password_hash", user.PasswordHash).Error; err != nil {
		return apperrors.Internal(err, "failed to update password")
	}
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.FromDB(err, apperrors.NotFound(i18n.KeyUserNotFound), "failed to load user")
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to generate access token")
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to generate refresh token")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
