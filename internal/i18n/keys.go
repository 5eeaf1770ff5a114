// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"
	KeyNotFound      = "error.not_found"
	KeyConflict      = "error.conflict"
	KeyInvalidInput  = "error.invalid_input"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthAccountInactive    = "auth.account_inactive"
	KeyAuthEmailExists        = "auth.email_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordResetSent  = "auth.password_reset_sent"
	KeyAuthPasswordResetDone  = "auth.password_reset_done"
	KeyAuthResetTokenInvalid  = "auth.reset_token_invalid"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAuthWrongPassword      = "auth.wrong_password"
	KeyForbidden              = "auth.forbidden"
	KeyAdminAccessDenied      = "admin.access_denied"
	KeyAuthTokenRefreshed     = "auth.token_refreshed"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserInvalidRole    = "user.invalid_role"
	KeyUserRoleUpdated    = "user.role_updated"
	KeyUserStatusUpdated  = "user.status_updated"
	KeyUserAvatarUpdated  = "user.avatar_updated"

	// Categories
	KeyCategoryCreated  = "category.created"
	KeyCategoryUpdated  = "category.updated"
	KeyCategoryDeleted  = "category.deleted"
	KeyCategoryNotFound = "category.not_found"
	KeyCategoryExists   = "category.exists"
	KeyCategoryInUse    = "category.in_use"

	// Products
	KeyProductCreated       = "product.created"
	KeyProductUpdated       = "product.updated"
	KeyProductDeleted       = "product.deleted"
	KeyProductNotFound      = "product.not_found"
	KeyProductSKUExists     = "product.sku_exists"
	KeyProductUnavailable   = "product.unavailable"
	KeyProductOutOfStock    = "product.out_of_stock"
	KeyProductBadDiscount   = "product.bad_discount"
	KeyProductStockUpdated  = "product.stock_updated"
	KeyProductTooManyImages = "product.too_many_images"
	KeyProductImageNotFound = "product.image_not_found"
	KeyProductImagesAdded   = "product.images_added"

	// Cart
	KeyCartFetched         = "cart.fetched"
	KeyCartItemAdded       = "cart.item_added"
	KeyCartItemUpdated     = "cart.item_updated"
	KeyCartItemRemoved     = "cart.item_removed"
	KeyCartCleared         = "cart.cleared"
	KeyCartEmpty           = "cart.empty"
	KeyCartItemNotFound    = "cart.item_not_found"
	KeyCartInsufficient    = "cart.insufficient_stock"
	KeyCartPricesSynced    = "cart.prices_synced"
	KeyCartPricesUnchanged = "cart.prices_unchanged"

	// Addresses
	KeyAddressCreated    = "address.created"
	KeyAddressUpdated    = "address.updated"
	KeyAddressDeleted    = "address.deleted"
	KeyAddressNotFound   = "address.not_found"
	KeyAddressDefaultSet = "address.default_set"

	// Coupons
	KeyCouponCreated       = "coupon.created"
	KeyCouponUpdated       = "coupon.updated"
	KeyCouponDeleted       = "coupon.deleted"
	KeyCouponNotFound      = "coupon.not_found"
	KeyCouponExists        = "coupon.exists"
	KeyCouponValid         = "coupon.valid"
	KeyCouponNotStarted    = "coupon.not_started"
	KeyCouponExpired       = "coupon.expired"
	KeyCouponExhausted     = "coupon.exhausted"
	KeyCouponMinPurchase   = "coupon.min_purchase"
	KeyCouponBadDates      = "coupon.bad_dates"
	KeyCouponBadPercentage = "coupon.bad_percentage"

	// Orders
	KeyOrderCreated         = "order.created"
	KeyOrderNotFound        = "order.not_found"
	KeyOrderCancelled       = "order.cancelled"
	KeyOrderNotCancellable  = "order.not_cancellable"
	KeyOrderStatusUpdated   = "order.status_updated"
	KeyOrderInvalidStatus   = "order.invalid_status"
	KeyOrderInvalidPayment  = "order.invalid_payment_status"
	KeyOrderItemUnavailable = "order.item_unavailable"
	KeyOrderInsufficient    = "order.insufficient_stock"
	KeyOrderPaymentUpdated  = "order.payment_updated"

	// Reviews
	KeyReviewCreated         = "review.created"
	KeyReviewUpdated         = "review.updated"
	KeyReviewDeleted         = "review.deleted"
	KeyReviewNotFound        = "review.not_found"
	KeyReviewExists          = "review.exists"
	KeyReviewApprovalUpdated = "review.approval_updated"
	KeyReviewMarkedHelpful   = "review.marked_helpful"

	// Wishlist
	KeyWishlistAdded    = "wishlist.added"
	KeyWishlistRemoved  = "wishlist.removed"
	KeyWishlistCleared  = "wishlist.cleared"
	KeyWishlistExists   = "wishlist.exists"
	KeyWishlistNotFound = "wishlist.item_not_found"
	KeyWishlistMoved    = "wishlist.moved_to_cart"

	// Admin reports
	KeyAdminInvalidGroupBy = "admin.invalid_group_by"
	KeyAdminInvalidRange   = "admin.invalid_range"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyInvalidID          = "validation.invalid_id"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
	KeyFileDeleted       = "file.deleted"

	KeyRateLimited = "rate_limit.exceeded"
)
