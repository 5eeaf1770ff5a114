package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindInvalid:      http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind)
	}
}

func TestSentinelMatching(t *testing.T) {
	errCartEmpty := Invalid("cart.empty")

	wrapped := fmt.Errorf("create order: %w", errCartEmpty.WithCause(fmt.Errorf("boom")))

	assert.ErrorIs(t, wrapped, errCartEmpty)
	assert.NotErrorIs(t, wrapped, Invalid("cart.other"))
	assert.Equal(t, KindInvalid, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
}

func TestFromDB(t *testing.T) {
	notFound := NotFound("product.not_found")

	assert.Nil(t, FromDB(nil, notFound, "x"))
	assert.ErrorIs(t, FromDB(gorm.ErrRecordNotFound, notFound, "x"), notFound)
	assert.Equal(t, KindNotFound, KindOf(FromDB(gorm.ErrRecordNotFound, nil, "x")))
	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrDuplicatedKey, nil, "dup")))
	assert.Equal(t, KindInvalid, KindOf(FromDB(gorm.ErrForeignKeyViolated, nil, "fk")))
	assert.Equal(t, KindInternal, KindOf(FromDB(fmt.Errorf("connection reset"), nil, "query")))

	missing := FromDB(gorm.ErrRecordNotFound, nil, "failed to load cart")
	assert.ErrorIs(t, missing, NotFound(i18n.KeyNotFound))
	assert.Contains(t, missing.Error(), "failed to load cart")
	assert.ErrorIs(t, FromDB(gorm.ErrDuplicatedKey, nil, "dup"), Conflict(i18n.KeyConflict))
	assert.ErrorIs(t, FromDB(gorm.ErrForeignKeyViolated, nil, "fk"), Invalid(i18n.KeyInvalidInput))

	already := Forbidden("nope")
	assert.Same(t, already, FromDB(already, notFound, "x"))
}

func TestErrorString(t *testing.T) {
	err := Invalid("cart.insufficient_stock", 3)
	assert.Equal(t, "cart.insufficient_stock [3]", err.Error())
	assert.Contains(t, Internal(fmt.Errorf("disk full"), "save failed").Error(), "disk full")
}
