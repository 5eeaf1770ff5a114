// internal/services/helpers.go
package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

// validateRequest re-checks a request DTO inside the service so that callers
// other than the HTTP handlers get the same guarantees.
func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Invalid(i18n.KeyValidationInvalid, "input").WithCause(err)
	}
	return nil
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// sqlite has no row locks and ignores the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
