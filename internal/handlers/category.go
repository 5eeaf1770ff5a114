// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /categories
// Admins may pass ?all=true to include inactive categories.
func (h *CategoryHandler) List(c *gin.Context) {
	activeOnly := true
	if all := queryBool(c, "all"); all != nil && *all && utils.IsAdmin(c) {
		activeOnly = false
	}

	categories, err := h.categoryService.List(c.Request.Context(), activeOnly)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, categories, "")
}

// GET /categories/:id (id or slug)
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, category, "")
}

// POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, category, i18n.KeyCategoryCreated)
}

// PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, category, i18n.KeyCategoryUpdated)
}

// DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyCategoryDeleted)
}

// POST /categories/:id/image
func (h *CategoryHandler) UploadImage(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationRequired, "image"), nil)
		return
	}

	category, err := h.categoryService.UploadImage(c.Request.Context(), id, header)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, category, i18n.KeyFileUploadSuccess)
}
