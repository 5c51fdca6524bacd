package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/domain"
	"github.com/payhub-ua/payoutbot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const operatorID int64 = 7106925462

type fakeProcessor struct {
	lastCreate *service.CreateInvoiceRequest
	invoice    domain.Invoice
	createErr  error
	status     domain.PaymentStatus
	statusErr  error
	statusIDs  []string
}

func (f *fakeProcessor) CreateInvoice(_ context.Context, req service.CreateInvoiceRequest) (*domain.Invoice, error) {
	f.lastCreate = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	inv := f.invoice
	return &inv, nil
}

func (f *fakeProcessor) InvoiceStatus(_ context.Context, invoiceID string) (domain.PaymentStatus, error) {
	f.statusIDs = append(f.statusIDs, invoiceID)
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

type fakeNotifier struct {
	sessions []domain.Session
	labels   []string
	err      error
}

func (f *fakeNotifier) NotifyInvoice(_ context.Context, sess domain.Session, currencyLabel string) error {
	f.sessions = append(f.sessions, sess)
	f.labels = append(f.labels, currencyLabel)
	return f.err
}

func newPayout(proc *fakeProcessor, notif *fakeNotifier) (*service.PayoutService, *service.SessionStore) {
	cfg := &config.Config{
		OperatorIDs:          []int64{operatorID},
		ExchangeRateUAHToUSD: 41.26,
	}
	store := service.NewSessionStore()
	return service.NewPayoutService(cfg, store, proc, notif), store
}

func initiate(t *testing.T, svc *service.PayoutService) *service.Result {
	t.Helper()
	res, err := svc.Handle(context.Background(), service.Initiate{
		OperatorID:  operatorID,
		RecipientID: 42,
		AmountUAH:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	return res
}

func TestInitiateComputesSettlementAmount(t *testing.T) {
	svc, store := newPayout(&fakeProcessor{}, &fakeNotifier{})

	res := initiate(t, svc)

	require.Equal(t, service.OutcomeMethodPrompt, res.Outcome)
	require.True(t, res.Session.AmountUSD.Equal(decimal.RequireFromString("12.12")),
		"500 UAH at 41.26 should settle as 12.12 USD, got %s", res.Session.AmountUSD)
	require.Equal(t, domain.StateAwaitingMethod, res.Session.State)

	sess := store.Get(operatorID)
	require.NotNil(t, sess)
	require.Equal(t, int64(42), sess.RecipientID)
}

func TestInitiateRejectsNonOperator(t *testing.T) {
	svc, store := newPayout(&fakeProcessor{}, &fakeNotifier{})

	_, err := svc.Handle(context.Background(), service.Initiate{
		OperatorID:  999,
		RecipientID: 42,
		AmountUAH:   decimal.NewFromInt(500),
	})

	require.ErrorIs(t, err, domain.ErrAccessDenied)
	require.Nil(t, store.Get(999))
}

func TestInitiateRejectsTinyAmount(t *testing.T) {
	svc, store := newPayout(&fakeProcessor{}, &fakeNotifier{})

	// 0.01 UAH settles to 0.00 USD after rounding.
	_, err := svc.Handle(context.Background(), service.Initiate{
		OperatorID:  operatorID,
		RecipientID: 42,
		AmountUAH:   decimal.RequireFromString("0.01"),
	})

	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	require.Nil(t, store.Get(operatorID))
}

func TestEventsWithoutSessionAreRejected(t *testing.T) {
	svc, _ := newPayout(&fakeProcessor{}, &fakeNotifier{})

	events := []service.Event{
		service.SelectCard{OperatorID: operatorID},
		service.SelectCrypto{OperatorID: operatorID},
		service.SelectCurrency{OperatorID: operatorID, Code: "eth"},
		service.ConfirmManual{OperatorID: operatorID},
		service.CheckStatus{OperatorID: operatorID},
		service.Cancel{OperatorID: operatorID},
	}
	for _, ev := range events {
		_, err := svc.Handle(context.Background(), ev)
		require.ErrorIs(t, err, domain.ErrNoSession, "%T should require a session", ev)
	}
}

func TestCryptoFlowCreatesInvoiceAndNotifiesRecipient(t *testing.T) {
	proc := &fakeProcessor{invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"}}
	notif := &fakeNotifier{}
	svc, store := newPayout(proc, notif)

	initiate(t, svc)

	res, err := svc.Handle(context.Background(), service.SelectCrypto{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCurrencyPrompt, res.Outcome)
	require.Equal(t, domain.StateAwaitingCurrency, res.Session.State)

	res, err = svc.Handle(context.Background(), service.SelectCurrency{OperatorID: operatorID, Code: "usdttrc20"})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeInvoiceCreated, res.Outcome)
	require.NoError(t, res.NotifyErr)

	// The processor gets the table code, never the display label.
	require.NotNil(t, proc.lastCreate)
	require.Equal(t, "usdttrc20", proc.lastCreate.PayCurrency)
	require.True(t, proc.lastCreate.AmountUSD.Equal(decimal.RequireFromString("12.12")))

	require.Len(t, notif.sessions, 1)
	require.Equal(t, "USDT (TRC20)", notif.labels[0])
	require.Equal(t, "https://pay/abc", notif.sessions[0].PayURL)

	sess := store.Get(operatorID)
	require.NotNil(t, sess)
	require.Equal(t, "abc", sess.InvoiceID)
	require.Equal(t, domain.StateInvoiceCreated, sess.State)
}

func TestSelectCurrencyUnknownCodeFallsBackToRawCode(t *testing.T) {
	proc := &fakeProcessor{invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"}}
	notif := &fakeNotifier{}
	svc, _ := newPayout(proc, notif)

	initiate(t, svc)
	svc.Handle(context.Background(), service.SelectCrypto{OperatorID: operatorID})

	_, err := svc.Handle(context.Background(), service.SelectCurrency{OperatorID: operatorID, Code: "doge"})
	require.NoError(t, err)
	require.Equal(t, "doge", proc.lastCreate.PayCurrency)
	require.Equal(t, "doge", notif.labels[0])
}

func TestSelectCurrencyProcessorErrorKeepsSession(t *testing.T) {
	procErr := &domain.ProcessorError{Op: "create invoice", StatusCode: 403, Body: "INVALID_API_KEY"}
	proc := &fakeProcessor{createErr: procErr}
	svc, store := newPayout(proc, &fakeNotifier{})

	initiate(t, svc)
	svc.Handle(context.Background(), service.SelectCrypto{OperatorID: operatorID})

	_, err := svc.Handle(context.Background(), service.SelectCurrency{OperatorID: operatorID, Code: "eth"})
	require.Error(t, err)

	var pe *domain.ProcessorError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 403, pe.StatusCode)

	// Session stays in currency selection so the operator may retry.
	sess := store.Get(operatorID)
	require.NotNil(t, sess)
	require.Equal(t, domain.StateAwaitingCurrency, sess.State)
	require.Empty(t, sess.InvoiceID)
}

func TestDeliveryFailureKeepsInvoice(t *testing.T) {
	proc := &fakeProcessor{invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"}}
	notif := &fakeNotifier{err: errors.New("bot blocked by recipient")}
	svc, store := newPayout(proc, notif)

	initiate(t, svc)
	svc.Handle(context.Background(), service.SelectCrypto{OperatorID: operatorID})

	res, err := svc.Handle(context.Background(), service.SelectCurrency{OperatorID: operatorID, Code: "eth"})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeInvoiceCreated, res.Outcome)
	require.Error(t, res.NotifyErr)

	// The invoice stands despite the failed delivery.
	sess := store.Get(operatorID)
	require.NotNil(t, sess)
	require.Equal(t, "abc", sess.InvoiceID)
}

func cryptoSession(t *testing.T, svc *service.PayoutService) {
	t.Helper()
	initiate(t, svc)
	_, err := svc.Handle(context.Background(), service.SelectCrypto{OperatorID: operatorID})
	require.NoError(t, err)
	_, err = svc.Handle(context.Background(), service.SelectCurrency{OperatorID: operatorID, Code: "usdttrc20"})
	require.NoError(t, err)
}

func TestCheckStatusFinishedClearsSession(t *testing.T) {
	proc := &fakeProcessor{
		invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"},
		status:  domain.StatusFinished,
	}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	res, err := svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeSettled, res.Outcome)
	require.Equal(t, []string{"abc"}, proc.statusIDs)
	require.Nil(t, store.Get(operatorID))

	// A second check has no session to work with.
	_, err = svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestCheckStatusWaitingKeepsSession(t *testing.T) {
	proc := &fakeProcessor{
		invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"},
		status:  domain.StatusWaiting,
	}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	res, err := svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeStatusPending, res.Outcome)
	require.Equal(t, domain.StatusWaiting, res.Status)

	sess := store.Get(operatorID)
	require.NotNil(t, sess)
	require.Equal(t, domain.StateAwaitingSettlement, sess.State)
}

func TestCheckStatusExpiredIsNotTerminal(t *testing.T) {
	proc := &fakeProcessor{
		invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"},
		status:  domain.StatusExpired,
	}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	res, err := svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeStatusStalled, res.Outcome)
	require.Equal(t, domain.StatusExpired, res.Status)

	// Unlike finished, the session survives and a later check can settle.
	require.NotNil(t, store.Get(operatorID))
	proc.status = domain.StatusFinished
	res, err = svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeSettled, res.Outcome)
	require.Nil(t, store.Get(operatorID))
}

func TestCheckStatusProcessorErrorKeepsSession(t *testing.T) {
	proc := &fakeProcessor{
		invoice:   domain.Invoice{ID: "abc", PayURL: "https://pay/abc"},
		statusErr: &domain.ProcessorError{Op: "invoice status", Err: errors.New("timeout")},
	}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	_, err := svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.Error(t, err)
	require.NotNil(t, store.Get(operatorID))
}

func TestCheckStatusWithoutInvoice(t *testing.T) {
	svc, _ := newPayout(&fakeProcessor{}, &fakeNotifier{})
	initiate(t, svc)

	_, err := svc.Handle(context.Background(), service.CheckStatus{OperatorID: operatorID})
	require.ErrorIs(t, err, domain.ErrNoInvoice)
}

func TestCardFlowManualConfirmClearsSession(t *testing.T) {
	svc, store := newPayout(&fakeProcessor{}, &fakeNotifier{})
	initiate(t, svc)

	res, err := svc.Handle(context.Background(), service.SelectCard{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCardPrompt, res.Outcome)
	require.Equal(t, domain.StateAwaitingCardConfirm, res.Session.State)

	res, err = svc.Handle(context.Background(), service.ConfirmManual{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeManualConfirmed, res.Outcome)
	require.Nil(t, store.Get(operatorID))
}

func TestCancelClearsSessionAndAllowsFreshInitiate(t *testing.T) {
	proc := &fakeProcessor{invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"}}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	res, err := svc.Handle(context.Background(), service.Cancel{OperatorID: operatorID})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCancelled, res.Outcome)
	require.Nil(t, store.Get(operatorID))

	res = initiate(t, svc)
	require.Equal(t, service.OutcomeMethodPrompt, res.Outcome)
	require.Empty(t, res.Session.InvoiceID)
}

func TestInitiateReplacesExistingSession(t *testing.T) {
	proc := &fakeProcessor{invoice: domain.Invoice{ID: "abc", PayURL: "https://pay/abc"}}
	svc, store := newPayout(proc, &fakeNotifier{})
	cryptoSession(t, svc)

	_, err := svc.Handle(context.Background(), service.Initiate{
		OperatorID:  operatorID,
		RecipientID: 77,
		AmountUAH:   decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	sess := store.Get(operatorID)
	require.Equal(t, int64(77), sess.RecipientID)
	require.Empty(t, sess.InvoiceID)
	require.Equal(t, domain.StateAwaitingMethod, sess.State)
}
