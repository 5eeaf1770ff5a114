package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/config"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/testutil"
)

type nopStorage struct{}

func (nopStorage) UploadFile(_ context.Context, header *multipart.FileHeader, options services.UploadOptions) (*services.UploadResult, error) {
	return &services.UploadResult{URL: "https://cdn.test/" + options.Folder + "/" + header.Filename}, nil
}

func (nopStorage) DeleteFileByURL(context.Context, string) error { return nil }

type countingNotifier struct {
	mu   sync.Mutex
	sent int
}

func (n *countingNotifier) inc() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent++
	return nil
}

func (n *countingNotifier) SendWelcomeEmail(*models.User) error                    { return n.inc() }
func (n *countingNotifier) SendPasswordResetEmail(*models.User, string) error      { return n.inc() }
func (n *countingNotifier) SendOrderConfirmation(*models.User, *models.Order) error { return n.inc() }
func (n *countingNotifier) SendOrderStatusUpdate(*models.User, *models.Order) error { return n.inc() }

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
	Meta       json.RawMessage `json:"meta"`
}

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize("en"))
}

func (s *APITestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{UploadDir: s.T().TempDir(), PublicURL: "http://localhost:8080"},
		JWT: config.JWTConfig{
			SecretKey:       "api-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
			CookieName:      "access_token",
		},
		Store: config.StoreConfig{
			TaxRate:               0.18,
			FreeShippingThreshold: 500,
			FlatShippingFee:       50,
			LowStockThreshold:     2,
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
	s.router = Initialize(s.db, cfg, nopStorage{}, &countingNotifier{})
}

func (s *APITestSuite) do(method, path string, body interface{}, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *APITestSuite) decode(raw json.RawMessage, dest interface{}) {
	s.Require().NoError(json.Unmarshal(raw, dest))
}

func (s *APITestSuite) login(email string) string {
	w, env := s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": email, "password": "Passw0rd!"}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var auth services.AuthResponse
	s.decode(env.Data, &auth)
	return auth.AccessToken
}

func (s *APITestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "healthy")
}

func (s *APITestSuite) TestUserRegistration() {
	payload := gin.H{"name": "Test User", "email": "Test@Example.com", "password": "TestPass123"}

	w, env := s.do(http.MethodPost, "/api/v1/auth/register", payload, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.True(env.Success)
	s.Equal(http.StatusCreated, env.StatusCode)

	var auth services.AuthResponse
	s.decode(env.Data, &auth)
	s.NotEmpty(auth.AccessToken)
	s.Equal("test@example.com", auth.User.Email)
	s.Contains(w.Header().Get("Set-Cookie"), "access_token=")

	w, env = s.do(http.MethodPost, "/api/v1/auth/register", payload, "")
	s.Equal(http.StatusConflict, w.Code)
	s.False(env.Success)

	w, _ = s.do(http.MethodGet, "/api/v1/auth/me", nil, auth.AccessToken)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestValidationErrorsAreListed() {
	w, env := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "X", "email": "nope", "password": "weak"}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(env.Success)

	var fields []struct {
		Field string `json:"field"`
	}
	s.decode(env.Errors, &fields)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	s.ElementsMatch([]string{"name", "email", "password"}, names)
}

func (s *APITestSuite) TestUserLogin() {
	testutil.CreateUser(s.T(), s.db, "shopper@example.com", models.UserRoleCustomer)

	s.NotEmpty(s.login("shopper@example.com"))

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "shopper@example.com", "password": "wrong"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(env.Success)
}

func (s *APITestSuite) TestAuthAndRoleGuards() {
	testutil.CreateUser(s.T(), s.db, "shopper@example.com", models.UserRoleCustomer)
	token := s.login("shopper@example.com")

	w, env := s.do(http.MethodGet, "/api/v1/cart", nil, "", "Accept-Language", "zh-TW")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(i18n.T("zh_TW", i18n.KeyAuthRequired), env.Message)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/dashboard", nil, token)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/products", gin.H{}, token)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/orders/not-a-uuid", nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestCheckoutFlow() {
	testutil.CreateUser(s.T(), s.db, "admin@example.com", models.UserRoleAdmin)
	testutil.CreateUser(s.T(), s.db, "shopper@example.com", models.UserRoleCustomer)
	adminToken := s.login("admin@example.com")
	token := s.login("shopper@example.com")

	// Catalog set up by the admin
	w, env := s.do(http.MethodPost, "/api/v1/categories", gin.H{"name": "Home Audio"}, adminToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	s.decode(env.Data, &category)
	s.Equal("home-audio", category.Slug)

	w, env = s.do(http.MethodPost, "/api/v1/products", gin.H{
		"name":           "Bookshelf Speaker",
		"sku":            "SPK-001",
		"price":          200,
		"stock_quantity": 3,
		"category_id":    category.ID,
	}, adminToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	s.decode(env.Data, &product)

	w, _ = s.do(http.MethodGet, "/api/v1/products?category=home-audio", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("1", w.Header().Get("X-Total-Count"))

	// Customer fills the cart and checks out
	w, env = s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 2}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cart models.Cart
	s.decode(env.Data, &cart)
	s.Equal(400.0, cart.TotalAmount)

	w, env = s.do(http.MethodPost, "/api/v1/addresses", gin.H{
		"full_name":     "Asha Rao",
		"phone":         "9999999999",
		"address_line1": "12 MG Road",
		"city":          "Pune",
		"state":         "MH",
		"postal_code":   "411001",
		"country":       "IN",
	}, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var address models.Address
	s.decode(env.Data, &address)
	s.True(address.IsDefault)

	w, env = s.do(http.MethodPost, "/api/v1/orders", gin.H{
		"shipping_address_id": address.ID,
		"payment_method":      models.PaymentMethodCOD,
	}, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	s.decode(env.Data, &order)
	s.Equal(522.0, order.FinalAmount)
	s.Equal(models.OrderStatusPending, order.Status)

	w, env = s.do(http.MethodGet, "/api/v1/products/"+product.ID.String(), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env.Data, &product)
	s.Equal(1, product.StockQuantity)

	w, _ = s.do(http.MethodGet, "/api/v1/orders/number/"+order.OrderNumber, nil, token)
	s.Equal(http.StatusOK, w.Code)

	// Admin moves the order along, then the customer can no longer cancel it
	w, _ = s.do(http.MethodPatch, "/api/v1/admin/orders/"+order.ID.String()+"/status", gin.H{"status": "shipped"}, adminToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPatch, "/api/v1/orders/"+order.ID.String()+"/cancel", gin.H{"reason": "changed my mind"}, token)
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(env.Success)

	w, env = s.do(http.MethodGet, "/api/v1/admin/dashboard", nil, adminToken)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats models.DashboardStats
	s.decode(env.Data, &stats)
	s.Equal(int64(1), stats.TotalOrders)
	s.Equal(int64(1), stats.LowStockProducts)
}

func (s *APITestSuite) TestCancelRestoresStock() {
	user := testutil.CreateUser(s.T(), s.db, "shopper@example.com", models.UserRoleCustomer)
	category := testutil.CreateCategory(s.T(), s.db, "kitchen")
	product := testutil.CreateProduct(s.T(), s.db, category.ID, 100, 5)
	address := testutil.CreateAddress(s.T(), s.db, user.ID, true)
	token := s.login(user.Email)

	w, _ := s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 5}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/orders", gin.H{"shipping_address_id": address.ID, "payment_method": "card"}, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	s.decode(env.Data, &order)

	testutil.Reload(s.T(), s.db, product, product.ID)
	s.Equal(models.ProductStatusOutOfStock, product.Status)

	w, _ = s.do(http.MethodPatch, "/api/v1/orders/"+order.ID.String()+"/cancel", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	testutil.Reload(s.T(), s.db, product, product.ID)
	s.Equal(5, product.StockQuantity)
	s.Equal(models.ProductStatusActive, product.Status)
}

func (s *APITestSuite) TestWishlistAndCoupons() {
	testutil.CreateUser(s.T(), s.db, "shopper@example.com", models.UserRoleCustomer)
	testutil.CreateUser(s.T(), s.db, "admin@example.com", models.UserRoleAdmin)
	token := s.login("shopper@example.com")
	adminToken := s.login("admin@example.com")
	category := testutil.CreateCategory(s.T(), s.db, "garden")
	product := testutil.CreateProduct(s.T(), s.db, category.ID, 80, 10)

	w, _ := s.do(http.MethodPost, "/api/v1/wishlist/"+product.ID.String(), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/v1/wishlist/"+product.ID.String(), nil, token)
	s.Equal(http.StatusConflict, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/wishlist/"+product.ID.String()+"/move-to-cart", gin.H{"quantity": 2}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cart models.Cart
	s.decode(env.Data, &cart)
	s.Equal(2, cart.TotalItems)

	w, _ = s.do(http.MethodPost, "/api/v1/coupons", gin.H{
		"code":           "save10",
		"discount_type":  "percentage",
		"discount_value": 10,
		"usage_limit":    5,
		"start_date":     "2020-01-01T00:00:00Z",
		"expiry_date":    "2099-01-01T00:00:00Z",
	}, adminToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(http.MethodPost, "/api/v1/coupons/validate", gin.H{"code": "SAVE10", "cart_total": 160}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var validation services.CouponValidation
	s.decode(env.Data, &validation)
	s.Equal(16.0, validation.DiscountAmount)
	s.Equal(144.0, validation.FinalAmount)

	w, _ = s.do(http.MethodPost, "/api/v1/coupons/validate", gin.H{"code": "MISSING", "cart_total": 160}, token)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
