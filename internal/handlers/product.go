// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

type ProductHandler struct {
	productService  *services.ProductService
	categoryService *services.CategoryService
	reviewService   *services.ReviewService
}

func NewProductHandler(productService *services.ProductService, categoryService *services.CategoryService, reviewService *services.ReviewService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
		reviewService:   reviewService,
	}
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	// Build search parameters
	filter := services.ProductFilter{
		PaginationParams: params,
		MinPrice:         queryFloat(c, "min_price"),
		MaxPrice:         queryFloat(c, "max_price"),
		InStock:          queryBool(c, "in_stock"),
		Featured:         queryBool(c, "featured"),
		Brand:            c.Query("brand"),
	}

	// category accepts an id or a slug
	if category := c.Query("category"); category != "" {
		found, err := h.categoryService.Get(c.Request.Context(), category)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		filter.CategoryID = &found.ID
	}

	// Only admins see inactive products or filter by status
	if utils.IsAdmin(c) {
		filter.Status = models.ProductStatus(c.Query("status"))
		filter.IncludeInactive = true
	}

	products, total, err := h.productService.Search(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /products/featured
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.productService.Featured(c.Request.Context(), queryInt(c, "limit", 8))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, products, "")
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetVisible(c.Request.Context(), id, utils.IsAdmin(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, product, "")
}

// GET /products/:id/related
func (h *ProductHandler) Related(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.Related(c.Request.Context(), id, queryInt(c, "limit", 4))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, products, "")
}

// GET /products/:id/reviews
func (h *ProductHandler) Reviews(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.ListForProduct(c.Request.Context(), id, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reviews, total, params))
}

// GET /products/:id/rating
func (h *ProductHandler) Rating(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.reviewService.GetRatingSummary(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, summary, "")
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, product, i18n.KeyProductCreated)
}

// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, product, i18n.KeyProductUpdated)
}

// PATCH /products/:id/stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		StockQuantity *int `json:"stock_quantity" validate:"required,gte=0"`
	}
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateStock(c.Request.Context(), id, *req.StockQuantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, product, i18n.KeyProductStockUpdated)
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyProductDeleted)
}

// POST /products/:id/images (multipart, field "images")
func (h *ProductHandler) UploadImages(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationRequired, "images"), nil)
		return
	}

	product, err := h.productService.UploadImages(c.Request.Context(), id, form.File["images"])
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, product, i18n.KeyProductImagesAdded)
}

// DELETE /products/:id/images
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ImageURL string `json:"image_url" validate:"required,url"`
	}
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.DeleteImage(c.Request.Context(), id, req.ImageURL)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, product, i18n.KeyFileDeleted)
}
