package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SymbolUSDT is the stablecoin used as a funding source for purchases.
const SymbolUSDT = "USDT"

type Asset struct {
	ID          uuid.UUID `json:"id"`
	Symbol      string    `json:"symbol"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NormalizeSymbol canonicalizes a ticker symbol for lookup and storage.
// The assets table treats symbol equality case-sensitively, so every
// boundary that accepts user input must go through this.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
