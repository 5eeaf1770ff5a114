package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

func TestUserProfileAndAvatar(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	storage := &fakeStorage{}
	svc := NewUserService(db, storage)
	user := testutil.CreateUser(t, db, "profile@example.com", models.UserRoleCustomer)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateUserProfileRequest{Name: "Kavya", Phone: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "Kavya", updated.Name)
	assert.Equal(t, "12345", updated.Phone)

	first, err := svc.UploadAvatar(ctx, user.ID, &multipart.FileHeader{Filename: "me.png", Size: 5})
	require.NoError(t, err)
	assert.Contains(t, first.AvatarURL, "avatars")
	assert.Empty(t, storage.deletedURLs())

	_, err = svc.UploadAvatar(ctx, user.ID, &multipart.FileHeader{Filename: "me2.png", Size: 5})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		deleted := storage.deletedURLs()
		return len(deleted) == 1 && deleted[0] == first.AvatarURL
	}, waitFor, tick)
}

func TestUserAdminWrites(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewUserService(db, &fakeStorage{})
	user := testutil.CreateUser(t, db, "promote@example.com", models.UserRoleCustomer)
	testutil.CreateUser(t, db, "boss@example.com", models.UserRoleAdmin)

	_, err := svc.UpdateUserRole(ctx, user.ID, "superuser")
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))

	promoted, err := svc.UpdateUserRole(ctx, user.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	disabled, err := svc.UpdateUserStatus(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	inactive := false
	users, total, err := svc.ListUsers(ctx, UserFilter{
		PaginationParams: utils.NewPaginationParams(1, 10, "", "", ""),
		IsActive:         &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, user.ID, users[0].ID)

	_, total, err = svc.ListUsers(ctx, UserFilter{
		PaginationParams: utils.NewPaginationParams(1, 10, "", "", "BOSS"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
