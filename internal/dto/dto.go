package dto

import "time"

type AddItemRequest struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type CartItemResponse struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type CartResponse struct {
	ID         uint               `json:"id"`
	Items      []CartItemResponse `json:"items"`
	CouponCode *string            `json:"coupon_code,omitempty"`
	Subtotal   string             `json:"subtotal"`
	Discount   string             `json:"discount"`
	Total      string             `json:"total"`
}

type UpdateQuantityResponse struct {
	Item   *CartItemResponse `json:"item,omitempty"`
	Capped bool              `json:"capped"`
}

type CouponTermsResponse struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type CreateAddressRequest struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

type AddressResponse struct {
	ID      uint   `json:"id"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

type CheckoutRequest struct {
	CartID     uint    `json:"cart_id"`
	AddressID  *uint   `json:"address_id"`
	CouponCode *string `json:"coupon_code"`
}

type CheckoutResponse struct {
	OrderID          uint   `json:"order_id"`
	Reference        string `json:"reference"`
	TotalAmount      string `json:"total_amount"`
	Currency         string `json:"currency"`
	AuthorizationURL string `json:"authorization_url"`
}

type OrderItemResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	Reference     string              `json:"reference,omitempty"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	TotalAmount   string              `json:"total_amount"`
	Currency      string              `json:"currency"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type StatusHistoryResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProductResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Description   string  `json:"description,omitempty"`
	BasePrice     string  `json:"base_price"`
	Price         string  `json:"price"`
	SaleName      *string `json:"sale_name,omitempty"`
	ActiveViewers int64   `json:"active_viewers,omitempty"`
}

type CouponRequest struct {
	Code             string  `json:"code"`
	DiscountType     string  `json:"discount_type"`
	DiscountValue    string  `json:"discount_value"`
	MinOrderAmount   string  `json:"min_order_amount"`
	MaxRedemptions   *int    `json:"max_redemptions"`
	PerCustomerLimit int     `json:"per_customer_limit"`
	Active           bool    `json:"active"`
	StartsAt         *string `json:"starts_at"`
	ExpiresAt        *string `json:"expires_at"`
}

type FlashSaleProductRequest struct {
	ProductID     uint    `json:"product_id"`
	OverrideType  *string `json:"override_type"`
	OverrideValue *string `json:"override_value"`
}

type FlashSaleRequest struct {
	Name          string                    `json:"name"`
	DiscountType  string                    `json:"discount_type"`
	DiscountValue string                    `json:"discount_value"`
	StartsAt      time.Time                 `json:"starts_at"`
	EndsAt        time.Time                 `json:"ends_at"`
	Priority      int                       `json:"priority"`
	Products      []FlashSaleProductRequest `json:"products"`
}
