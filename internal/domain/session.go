package domain

import "github.com/shopspring/decimal"

type SessionState string

const (
	StateAwaitingMethod      SessionState = "awaiting_method"
	StateAwaitingCardConfirm SessionState = "awaiting_card_confirm"
	StateAwaitingCurrency    SessionState = "awaiting_currency"
	StateInvoiceCreated      SessionState = "invoice_created"
	StateAwaitingSettlement  SessionState = "awaiting_settlement"
)

// Session is the single in-flight payout of one operator. Terminal
// transitions (settled, cancelled, manual confirmation) remove the
// session from the store instead of keeping a terminal state around.
type Session struct {
	OperatorID  int64
	RecipientID int64
	AmountUAH   decimal.Decimal
	AmountUSD   decimal.Decimal
	PayCurrency string
	InvoiceID   string
	PayURL      string
	State       SessionState
}
