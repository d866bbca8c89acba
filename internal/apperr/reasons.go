package apperr

// Reason codes returned to API clients. Keep these stable; dashboards and
// storefront UI copy key off them.
const (
	ReasonCartNotFound    = "cart_not_found"
	ReasonCartEmpty       = "cart_empty"
	ReasonNotCartOwner    = "not_cart_owner"
	ReasonItemNotFound    = "cart_item_not_found"
	ReasonProductNotFound = "product_not_found"
	ReasonBadQuantity     = "quantity_must_be_positive"

	ReasonCouponAlreadyApplied = "coupon_already_applied"
	ReasonCouponNotFound       = "coupon_not_found"
	ReasonCouponInactive       = "coupon_inactive"
	ReasonCouponNotStarted     = "coupon_not_started"
	ReasonCouponExpired        = "coupon_expired"
	ReasonCouponExhausted      = "coupon_max_redemptions_reached"
	ReasonCouponCustomerLimit  = "coupon_per_customer_limit_reached"
	ReasonCouponMinOrder       = "order_minimum_not_met"

	ReasonOrderNotFound     = "order_not_found"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonGuestCheckout     = "guest_cart_cannot_checkout"
	ReasonAddressNotFound   = "address_not_found"

	ReasonBadSignature      = "invalid_webhook_signature"
	ReasonVerifyFailed      = "transaction_not_successful"
	ReasonAmountMismatch    = "amount_mismatch"
	ReasonCurrencyMismatch  = "currency_mismatch"
	ReasonUserMismatch      = "user_mismatch"
	ReasonIllegalTransition = "illegal_status_transition"
)
