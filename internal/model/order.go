package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type Order struct {
	ID uint `gorm:"primaryKey"`
	// transaction reference handed to the gateway at payment initialization
	Reference     string          `gorm:"size:64;uniqueIndex"`
	UserID        uint            `gorm:"index;not null"`
	Status        OrderStatus     `gorm:"size:32;index;not null"`
	PaymentStatus PaymentStatus   `gorm:"size:16;index;not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	// fixed at creation, never recomputed
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CouponCode  *string         `gorm:"size:64"`
	Currency    string          `gorm:"size:8;not null"`
	AddressID   *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is an immutable snapshot taken at order creation; it never
// re-reads live product data.
type OrderItem struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	VariantID *uint
	Name      string          `gorm:"size:255;not null"`
	SKU       string          `gorm:"size:64;not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time
}

// OrderStatusHistory is append-only; one row per accepted transition.
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey"`
	OrderID    uint        `gorm:"index;not null"`
	FromStatus OrderStatus `gorm:"size:32;not null"`
	ToStatus   OrderStatus `gorm:"size:32;not null"`
	Actor      string      `gorm:"size:32;not null"`
	Note       string      `gorm:"size:255"`
	CreatedAt  time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
