// Package testutil opens throwaway sqlite databases with the production schema
// and creates fixtures for service and handler tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/database"
	"github.com/javajoker/ecommerce-backend/internal/models"
)

var dbCounter int64

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb_%d_%s?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1), uuid.NewString())
	db, err := gorm.Open(sqlite.Open(name), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection serializes transactions the way row locks do on postgres.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		IsActive: true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func CreateProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          "Product " + uuid.NewString()[:8],
		SKU:           "SKU-" + uuid.NewString()[:12],
		Price:         price,
		StockQuantity: stock,
		Status:        models.ProductStatusActive,
		CategoryID:    categoryID,
		Images:        models.StringList{"https://cdn.example.com/p.jpg"},
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func CreateAddress(t *testing.T, db *gorm.DB, userID uuid.UUID, isDefault bool) *models.Address {
	t.Helper()

	address := &models.Address{
		UserID:       userID,
		FullName:     "Asha Rao",
		Phone:        "9999999999",
		AddressLine1: "12 MG Road",
		City:         "Pune",
		State:        "MH",
		PostalCode:   "411001",
		Country:      "IN",
		AddressType:  models.AddressTypeHome,
		IsDefault:    isDefault,
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

// Reload fetches the current row for dest's primary key.
func Reload(t *testing.T, db *gorm.DB, dest interface{}, id uuid.UUID) {
	t.Helper()
	require.NoError(t, db.First(dest, "id = ?", id).Error)
}
