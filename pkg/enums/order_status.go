package enums

// OrderStatus tracks the storefront order lifecycle.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusRefunded        OrderStatus = "refunded"
	OrderStatusPaymentFailed   OrderStatus = "payment_failed"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaitingPayment,
	OrderStatusPaid,
	OrderStatusRefunded,
	OrderStatusPaymentFailed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseKnown("order status", value, validOrderStatuses)
}
