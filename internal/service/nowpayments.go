package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/domain"
)

// NowPaymentsClient talks to the NOWPayments v1 API. Every call is a
// single attempt with a fixed timeout; failures surface as
// *domain.ProcessorError.
type NowPaymentsClient struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

func NewNowPaymentsClient(cfg *config.Config) *NowPaymentsClient {
	return &NowPaymentsClient{
		baseURL:     strings.TrimRight(cfg.NowPaymentsURL, "/"),
		apiKey:      cfg.NowPaymentsAPIKey,
		callbackURL: strings.TrimRight(cfg.WebhookURL, "/") + config.IPNPath,
		httpClient:  &http.Client{Timeout: config.ProcessorTimeout},
	}
}

func (c *NowPaymentsClient) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error) {
	payload := map[string]interface{}{
		"price_amount":      req.AmountUSD.InexactFloat64(),
		"price_currency":    config.SettlementCurrency,
		"pay_currency":      req.PayCurrency,
		"ipn_callback_url":  c.callbackURL,
		"order_id":          fmt.Sprintf("payout_%d_%d_%s", req.OperatorID, req.RecipientID, uuid.NewString()),
		"order_description": fmt.Sprintf("Виставлення рахунку оператором %d для користувача %d", req.OperatorID, req.RecipientID),
	}

	body, err := c.post(ctx, "create invoice", "/invoice", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		InvoiceID  string `json:"invoice_id"`
		InvoiceURL string `json:"invoice_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &domain.ProcessorError{Op: "create invoice", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return &domain.Invoice{ID: result.InvoiceID, PayURL: result.InvoiceURL}, nil
}

func (c *NowPaymentsClient) InvoiceStatus(ctx context.Context, invoiceID string) (domain.PaymentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/invoice/"+invoiceID, nil)
	if err != nil {
		return "", &domain.ProcessorError{Op: "invoice status", Err: fmt.Errorf("create request: %w", err)}
	}
	c.setHeaders(req)

	body, err := c.do("invoice status", req)
	if err != nil {
		return "", err
	}

	var result struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &domain.ProcessorError{Op: "invoice status", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return domain.ParsePaymentStatus(result.PaymentStatus), nil
}

func (c *NowPaymentsClient) post(ctx context.Context, op, path string, payload map[string]interface{}) ([]byte, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.ProcessorError{Op: op, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payloadJSON))
	if err != nil {
		return nil, &domain.ProcessorError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	c.setHeaders(req)

	return c.do(op, req)
}

func (c *NowPaymentsClient) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProcessorError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProcessorError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProcessorError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func (c *NowPaymentsClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
