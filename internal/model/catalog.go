package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:255"`
	Role      string `gorm:"size:32;not null;default:'customer'"` // customer, admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	SKU         string          `gorm:"size:64;uniqueIndex;not null"`
	Description string          `gorm:"type:text"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Stock       int             `gorm:"not null;default:0"` // used when the product has no variants
	Published   bool            `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

type Variant struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:255;not null"`
	SKU       string          `gorm:"size:64;uniqueIndex;not null"`
	// added on top of the product's resolved price
	PriceDelta decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Stock      int             `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Address struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Line1     string `gorm:"size:255;not null"`
	City      string `gorm:"size:128;not null"`
	Country   string `gorm:"size:64;not null"`
	Phone     string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
