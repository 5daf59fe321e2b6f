package app

import "github.com/shopspring/decimal"

// ConfigureEncoding sets process-wide encoding options. Binaries call it once
// from main before serving: money amounts are written as JSON numbers.
func ConfigureEncoding() {
	decimal.MarshalJSONWithoutQuotes = true
}
