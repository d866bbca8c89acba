package service

import "storefront-checkout/internal/model"

// Actor is the caller identity handed down from the identity middleware:
// a signed-in user, or a guest known only by a session token.
type Actor struct {
	UserID       *uint
	SessionToken string
	Role         string
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != nil
}

// OwnsCart reports whether the actor matches the cart's owner key. A cart is
// never both user-owned and guest-owned.
func (a Actor) OwnsCart(cart *model.Cart) bool {
	if cart.UserID != nil {
		return a.UserID != nil && *a.UserID == *cart.UserID
	}
	if cart.SessionToken != nil {
		return a.SessionToken != "" && a.SessionToken == *cart.SessionToken
	}
	return false
}
