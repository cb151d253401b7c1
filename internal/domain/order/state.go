package order

// paymentTransitions is the allowed payment-status graph:
// pending -> paid | failed, paid -> refunded. Everything else is rejected.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

// fulfillmentTransitions is the staff-driven lifecycle. The reference system
// allowed any assignment; an explicit graph is enforced here so an order can
// never move backwards (e.g. delivered -> pending). Cancellation is allowed
// from every state before delivery.
var fulfillmentTransitions = map[Status][]Status{
	StatusPending:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed:    {StatusInProduction, StatusCancelled},
	StatusInProduction: {StatusReady, StatusCancelled},
	StatusReady:        {StatusDelivered, StatusCancelled},
	StatusDelivered:    {},
	StatusCancelled:    {},
}

// CanTransitionPayment reports whether the payment-status change is legal.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionPayment moves the order to the new payment status or rejects the
// change with ErrPaymentTransition.
func (o *Order) TransitionPayment(to PaymentStatus) error {
	if !to.Valid() {
		return ErrInvalidPaymentStatus
	}
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return ErrPaymentTransition
	}
	o.PaymentStatus = to
	o.touch()
	return nil
}

// TransitionStatus moves the order through the fulfillment graph or rejects
// the change with ErrInvalidTransition.
func (o *Order) TransitionStatus(to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	for _, next := range fulfillmentTransitions[o.Status] {
		if next == to {
			o.Status = to
			o.touch()
			return nil
		}
	}
	return ErrInvalidTransition
}

func (o *Order) touch() {
	o.UpdatedAt = nowUTC()
}
