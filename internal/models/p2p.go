package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// P2PTrade is a fiat<->USDT exchange done off-exchange (bank transfer
// against USDT). Each trade is backed by a cash-funded USDT ledger leg;
// TransactionID references it.
type P2PTrade struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transactionId"`
	Side          string          `json:"side"` // "buy" or "sell" (of USDT)
	UsdtAmount    decimal.Decimal `json:"usdtAmount"`
	VndAmount     decimal.Decimal `json:"vndAmount"`
	Rate          decimal.Decimal `json:"rate"` // VND per USDT
	Counterparty  string          `json:"counterparty,omitempty"`
	Note          string          `json:"note,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}
