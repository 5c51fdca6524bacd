package config

import "time"

const (
	// Processor HTTP timeout
	ProcessorTimeout = 30 * time.Second

	// Settlement currency for processor invoices
	SettlementCurrency = "usd"

	// Path the processor posts IPN callbacks to
	IPNPath = "/nowpayments_ipn"

	// Audit chat send timeout
	AuditSendTimeout = 10 * time.Second

	// IPN listener shutdown grace period
	ShutdownTimeout = 5 * time.Second
)
