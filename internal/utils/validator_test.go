package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Status   string `json:"status" validate:"omitempty,order_status"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleRequest{Email: "a@b.com", Password: "Passw0rdX", Status: "shipped"}))

	err := ValidateStruct(sampleRequest{Email: "nope", Password: "weak", Status: "lost"})
	require.Error(t, err)

	fields := map[string]string{}
	for _, e := range GetValidationErrors(err) {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "strong_password", fields["password"])
	assert.Equal(t, "order_status", fields["status"])
}

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams(0, 1000, "", "sideways", "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, "desc", p.Order)

	p = NewPaginationParams(3, 10, "price", "asc", "")
	assert.Equal(t, 20, p.Offset())

	result := CreatePaginationResult(nil, 21, p)
	assert.Equal(t, 3, result.TotalPages)
}
