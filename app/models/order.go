package models

import "time"

const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// OrderStatuses lists every status an admin may set, in workflow order.
var OrderStatuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ValidStatus reports whether s is one of OrderStatuses.
func ValidStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is a snapshot of a checkout. It never points at live catalog rows,
// so later catalog edits leave historical orders untouched.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        *uint       `gorm:"index" json:"user_id,omitempty"`
	Name          string      `gorm:"size:100;not null" json:"name"`
	Phone         string      `gorm:"size:20;not null" json:"phone"`
	Email         string      `gorm:"size:120" json:"email"`
	HouseNumber   string      `gorm:"size:50" json:"house_number"`
	Address       string      `gorm:"type:text;not null" json:"address"`
	Pincode       string      `gorm:"size:10" json:"pincode"`
	CustomDetails string      `gorm:"type:text" json:"custom_details"`
	Total         int64       `gorm:"not null" json:"total"`
	Status        string      `gorm:"size:20;not null;default:Pending" json:"status"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
}

// OrderItem is one line of an order. ProductID is informational only.
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"not null;index" json:"order_id"`
	ProductID   *uint  `json:"product_id,omitempty"`
	ProductName string `gorm:"size:200;not null" json:"product_name"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	Subtotal    int64  `gorm:"not null" json:"subtotal"`
}
