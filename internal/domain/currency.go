package domain

// Currency pairs a human-readable label with the processor-specific
// pay-currency code.
type Currency struct {
	Label string
	Code  string
}

// Currencies available for crypto payouts. Fixed at process start.
var Currencies = []Currency{
	{Label: "USDT (Solana)", Code: "usdtsol"},
	{Label: "USDT (TRC20)", Code: "usdttrc20"},
	{Label: "ETH", Code: "eth"},
	{Label: "USDT (Arbitrum)", Code: "usdtarb"},
	{Label: "USDT (Polygon)", Code: "usdtmatic"},
	{Label: "USDT (TON)", Code: "usdtton"},
	{Label: "AVAX (C-Chain)", Code: "avax"},
	{Label: "APTOS (APT)", Code: "apt"},
}

// CurrencyLabel resolves a pay-currency code to its display label,
// falling back to the raw code for codes outside the table.
func CurrencyLabel(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Label
		}
	}
	return code
}
