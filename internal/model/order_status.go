package model

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// transition actors recorded in the status history
const (
	ActorSystem   = "system"
	ActorAdmin    = "admin"
	ActorPayment  = "payment"
	ActorCustomer = "customer"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether next is reachable from current. A redundant
// transition (current == next) is allowed so that retried confirmations stay
// idempotent; callers skip the history write in that case.
func CanTransition(current, next OrderStatus) bool {
	if current == next {
		return true
	}
	for _, s := range orderTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}
