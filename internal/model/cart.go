package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is owned by exactly one of UserID (signed-in) or SessionToken (guest).
type Cart struct {
	ID           uint    `gorm:"primaryKey"`
	UserID       *uint   `gorm:"uniqueIndex"`
	SessionToken *string `gorm:"size:64;uniqueIndex"`
	CouponCode   *string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []CartItem `gorm:"foreignKey:CartID"`
}

type CartItem struct {
	ID        uint  `gorm:"primaryKey"`
	CartID    uint  `gorm:"uniqueIndex:idx_cart_product_variant;not null"`
	ProductID uint  `gorm:"uniqueIndex:idx_cart_product_variant;index;not null"`
	VariantID *uint `gorm:"uniqueIndex:idx_cart_product_variant"`
	Quantity  int   `gorm:"not null"`
	// displayed price at add-time; re-resolved, not trusted, at checkout
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Name      string          `gorm:"size:255;not null"`
	SKU       string          `gorm:"size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
