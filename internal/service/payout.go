package service

import (
	"context"

	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/domain"
	"github.com/shopspring/decimal"
)

// Event is one payout lifecycle event. Every button press and the
// /payout command map to exactly one variant; the transition function
// switches over them exhaustively.
type Event interface {
	operatorID() int64
}

type Initiate struct {
	OperatorID  int64
	RecipientID int64
	AmountUAH   decimal.Decimal
}

type SelectCard struct{ OperatorID int64 }

type SelectCrypto struct{ OperatorID int64 }

type SelectCurrency struct {
	OperatorID int64
	Code       string
}

type ConfirmManual struct{ OperatorID int64 }

type CheckStatus struct{ OperatorID int64 }

type Cancel struct{ OperatorID int64 }

func (e Initiate) operatorID() int64       { return e.OperatorID }
func (e SelectCard) operatorID() int64     { return e.OperatorID }
func (e SelectCrypto) operatorID() int64   { return e.OperatorID }
func (e SelectCurrency) operatorID() int64 { return e.OperatorID }
func (e ConfirmManual) operatorID() int64  { return e.OperatorID }
func (e CheckStatus) operatorID() int64    { return e.OperatorID }
func (e Cancel) operatorID() int64         { return e.OperatorID }

// Outcome tags what a successfully handled event produced, so the
// transport layer can render the matching message and keyboard.
type Outcome int

const (
	OutcomeMethodPrompt Outcome = iota
	OutcomeCardPrompt
	OutcomeCurrencyPrompt
	OutcomeInvoiceCreated
	OutcomeStatusPending
	OutcomeStatusStalled
	OutcomeSettled
	OutcomeManualConfirmed
	OutcomeCancelled
)

// Result of a handled event. Session is a snapshot taken after the
// transition (for terminal outcomes, just before the session was
// cleared). NotifyErr is set when the invoice was created but the
// recipient could not be reached; the invoice stands regardless.
type Result struct {
	Outcome   Outcome
	Session   domain.Session
	Status    domain.PaymentStatus
	NotifyErr error
}

type CreateInvoiceRequest struct {
	OperatorID  int64
	RecipientID int64
	AmountUSD   decimal.Decimal
	PayCurrency string
}

// ProcessorClient is the narrow surface of the payment processor the
// machine needs. Both calls are single-attempt.
type ProcessorClient interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error)
	InvoiceStatus(ctx context.Context, invoiceID string) (domain.PaymentStatus, error)
}

// RecipientNotifier delivers the pay link to the payout beneficiary.
// Best-effort: a delivery error never rolls back the created invoice.
type RecipientNotifier interface {
	NotifyInvoice(ctx context.Context, sess domain.Session, currencyLabel string) error
}

// PayoutService drives the invoice lifecycle: it guards events by the
// operator allow-list and session presence, mutates the session store
// and talks to the processor through the injected client.
type PayoutService struct {
	cfg       *config.Config
	store     *SessionStore
	processor ProcessorClient
	notifier  RecipientNotifier
	rate      decimal.Decimal
}

func NewPayoutService(cfg *config.Config, store *SessionStore, processor ProcessorClient, notifier RecipientNotifier) *PayoutService {
	return &PayoutService{
		cfg:       cfg,
		store:     store,
		processor: processor,
		notifier:  notifier,
		rate:      decimal.NewFromFloat(cfg.ExchangeRateUAHToUSD),
	}
}

// Handle applies one event. Events of the same operator are serialized,
// including the blocking processor calls, so a session sees at most one
// mutation at a time. Domain errors (ErrAccessDenied, ErrNoSession,
// ErrNoInvoice, ErrInvalidAmount, *ProcessorError) leave the session
// exactly as it was.
func (s *PayoutService) Handle(ctx context.Context, ev Event) (*Result, error) {
	if !s.cfg.IsOperator(ev.operatorID()) {
		return nil, domain.ErrAccessDenied
	}

	unlock := s.store.LockOperator(ev.operatorID())
	defer unlock()

	switch ev := ev.(type) {
	case Initiate:
		return s.initiate(ev)
	case SelectCard:
		return s.selectCard(ev)
	case SelectCrypto:
		return s.selectCrypto(ev)
	case SelectCurrency:
		return s.selectCurrency(ctx, ev)
	case ConfirmManual:
		return s.confirmManual(ev)
	case CheckStatus:
		return s.checkStatus(ctx, ev)
	case Cancel:
		return s.cancel(ev)
	default:
		return nil, domain.ErrNoSession
	}
}

func (s *PayoutService) initiate(ev Initiate) (*Result, error) {
	usd := ConvertUAHToUSD(ev.AmountUAH, s.rate)
	if usd.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	// A new /payout replaces whatever session the operator had.
	sess := &domain.Session{
		OperatorID:  ev.OperatorID,
		RecipientID: ev.RecipientID,
		AmountUAH:   ev.AmountUAH,
		AmountUSD:   usd,
		State:       domain.StateAwaitingMethod,
	}
	s.store.Put(sess)

	return &Result{Outcome: OutcomeMethodPrompt, Session: *sess}, nil
}

func (s *PayoutService) selectCard(ev SelectCard) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	sess.State = domain.StateAwaitingCardConfirm
	return &Result{Outcome: OutcomeCardPrompt, Session: *sess}, nil
}

func (s *PayoutService) selectCrypto(ev SelectCrypto) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	sess.State = domain.StateAwaitingCurrency
	return &Result{Outcome: OutcomeCurrencyPrompt, Session: *sess}, nil
}

func (s *PayoutService) selectCurrency(ctx context.Context, ev SelectCurrency) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}

	inv, err := s.processor.CreateInvoice(ctx, CreateInvoiceRequest{
		OperatorID:  sess.OperatorID,
		RecipientID: sess.RecipientID,
		AmountUSD:   sess.AmountUSD,
		PayCurrency: ev.Code,
	})
	if err != nil {
		// Session stays in currency selection; the operator may retry.
		return nil, err
	}

	sess.PayCurrency = ev.Code
	sess.InvoiceID = inv.ID
	sess.PayURL = inv.PayURL
	sess.State = domain.StateInvoiceCreated

	notifyErr := s.notifier.NotifyInvoice(ctx, *sess, domain.CurrencyLabel(ev.Code))

	return &Result{Outcome: OutcomeInvoiceCreated, Session: *sess, NotifyErr: notifyErr}, nil
}

func (s *PayoutService) confirmManual(ev ConfirmManual) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	snapshot := *sess
	s.store.Delete(ev.OperatorID)
	return &Result{Outcome: OutcomeManualConfirmed, Session: snapshot}, nil
}

func (s *PayoutService) checkStatus(ctx context.Context, ev CheckStatus) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	if sess.InvoiceID == "" {
		return nil, domain.ErrNoInvoice
	}

	status, err := s.processor.InvoiceStatus(ctx, sess.InvoiceID)
	if err != nil {
		return nil, err
	}

	switch {
	case status.Settled():
		snapshot := *sess
		s.store.Delete(ev.OperatorID)
		return &Result{Outcome: OutcomeSettled, Session: snapshot, Status: status}, nil
	case status.Pending():
		sess.State = domain.StateAwaitingSettlement
		return &Result{Outcome: OutcomeStatusPending, Session: *sess, Status: status}, nil
	default:
		// cancelled / expired / partially_paid / unknown: the session
		// survives and the operator decides whether to retry or cancel.
		sess.State = domain.StateAwaitingSettlement
		return &Result{Outcome: OutcomeStatusStalled, Session: *sess, Status: status}, nil
	}
}

func (s *PayoutService) cancel(ev Cancel) (*Result, error) {
	sess := s.store.Get(ev.OperatorID)
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	snapshot := *sess
	s.store.Delete(ev.OperatorID)
	return &Result{Outcome: OutcomeCancelled, Session: snapshot}, nil
}
