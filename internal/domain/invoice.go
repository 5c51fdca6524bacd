package domain

// Invoice is the processor-side record this bot references but never
// mutates.
type Invoice struct {
	ID     string
	PayURL string
}

// PaymentStatus is the processor-reported status string. Unrecognized
// values are kept verbatim so the operator sees what the processor said;
// only a missing status collapses to StatusUnknown.
type PaymentStatus string

const (
	StatusWaiting       PaymentStatus = "waiting"
	StatusConfirming    PaymentStatus = "confirming"
	StatusConfirmed     PaymentStatus = "confirmed"
	StatusFinished      PaymentStatus = "finished"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusExpired       PaymentStatus = "expired"
	StatusCancelled     PaymentStatus = "cancelled"
	StatusUnknown       PaymentStatus = "unknown"
)

func ParsePaymentStatus(s string) PaymentStatus {
	if s == "" {
		return StatusUnknown
	}
	return PaymentStatus(s)
}

// Pending reports whether the payment is still in flight and worth
// re-checking as-is.
func (s PaymentStatus) Pending() bool {
	switch s {
	case StatusWaiting, StatusConfirming, StatusConfirmed:
		return true
	}
	return false
}

// Settled reports the only terminal-success status.
func (s PaymentStatus) Settled() bool {
	return s == StatusFinished
}
