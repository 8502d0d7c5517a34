package enums

import "slices"

// PaymentStatus tracks a gateway-hosted payment. Manual orders carry none.
type PaymentStatus string

const (
	PaymentStatusAwaitingPayment PaymentStatus = "awaiting_payment"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusRefunded        PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusAwaitingPayment,
	PaymentStatusFailed,
	PaymentStatusPaid,
	PaymentStatusRefunded,
}

func (p PaymentStatus) IsValid() bool {
	return p.Rank() >= 0
}

// Rank orders payment statuses along the only direction they may move.
// Unknown values rank -1.
func (p PaymentStatus) Rank() int {
	return slices.Index(validPaymentStatuses, p)
}

// StatusesAtOrBelow lists every status a transition to p may start from.
func (p PaymentStatus) StatusesAtOrBelow() []PaymentStatus {
	rank := p.Rank()
	if rank < 0 {
		return nil
	}
	return slices.Clone(validPaymentStatuses[:rank+1])
}
