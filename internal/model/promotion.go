package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

type FlashSale struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:255;not null"`
	DiscountType  DiscountType    `gorm:"size:16;not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	StartsAt      time.Time       `gorm:"index;not null"`
	EndsAt        time.Time       `gorm:"index;not null"`
	// lower value wins when sales overlap; exact ties go to the older row
	Priority  int `gorm:"not null;default:100"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []FlashSaleProduct `gorm:"foreignKey:FlashSaleID"`
}

type FlashSaleProduct struct {
	ID          uint `gorm:"primaryKey"`
	FlashSaleID uint `gorm:"uniqueIndex:idx_sale_product;not null"`
	ProductID   uint `gorm:"uniqueIndex:idx_sale_product;index;not null"`
	// when set, supersedes the sale's own discount for this product
	OverrideType  *DiscountType    `gorm:"size:16"`
	OverrideValue *decimal.Decimal `gorm:"type:decimal(20,2)"`
}

type Coupon struct {
	ID            uint            `gorm:"primaryKey"`
	Code          string          `gorm:"size:64;uniqueIndex;not null"` // stored upper-cased
	DiscountType  DiscountType    `gorm:"size:16;not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	MinOrderAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	// nil means unlimited
	MaxRedemptions   *int `gorm:""`
	PerCustomerLimit int  `gorm:"not null;default:1"`
	Active           bool `gorm:"not null;default:true;index"`
	StartsAt         *time.Time
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CouponRedemption rows are the source of truth for redemption counts.
type CouponRedemption struct {
	ID        uint `gorm:"primaryKey"`
	CouponID  uint `gorm:"uniqueIndex:idx_coupon_order;index;not null"`
	UserID    uint `gorm:"index;not null"`
	OrderID   uint `gorm:"uniqueIndex:idx_coupon_order;not null"`
	CreatedAt time.Time
}
