// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one mutating API request.
type AuditLog struct {
	RecordModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	Payload      JSONB      `json:"payload,omitempty" gorm:"type:text"`
	StatusCode   int        `json:"status_code"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// DashboardStats is the admin overview returned by the dashboard endpoint.
type DashboardStats struct {
	TotalUsers       int64                 `json:"total_users"`
	TotalProducts    int64                 `json:"total_products"`
	TotalOrders      int64                 `json:"total_orders"`
	TotalRevenue     float64               `json:"total_revenue"`
	PendingOrders    int64                 `json:"pending_orders"`
	LowStockProducts int64                 `json:"low_stock_products"`
	OrdersByStatus   map[OrderStatus]int64 `json:"orders_by_status"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// SalesPoint is one bucket of the sales report.
type SalesPoint struct {
	Period     string  `json:"period"`
	OrderCount int64   `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

// TopProduct ranks products by units sold in non-cancelled orders.
type TopProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitsSold   int64     `json:"units_sold"`
	Revenue     float64   `json:"revenue"`
}
