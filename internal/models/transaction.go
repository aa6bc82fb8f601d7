package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	KindBuy  = "buy"
	KindSell = "sell"
)

// Funding source of a buy leg. A buy paid for with previously acquired
// USDT has no external cash flow of its own; the cash is accounted on
// the linked USDT sell leg instead.
const (
	FundingCash = "CASH"
	FundingUSDT = "USDT"
)

type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	AssetID      uuid.UUID       `json:"assetId"`
	Kind         string          `json:"kind"` // "buy" or "sell"
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"` // USD per unit

	// TotalCashAmount is the external cash that actually changed hands
	// for this leg, in USD. Zero on USDT-funded buy legs.
	TotalCashAmount decimal.Decimal `json:"totalCashAmount"`

	Fee           decimal.Decimal `json:"fee"`           // USD
	NativeFee     decimal.Decimal `json:"nativeFee"`     // fee as entered, display only
	NativeFeeUnit string          `json:"nativeFeeUnit"` // "USD" or the asset symbol

	FundingSource string `json:"fundingSource"` // CASH or USDT

	// LinkedTransactionID joins the two legs of a USDT-funded purchase:
	// the buy leg points at its USDT sell leg and vice versa.
	LinkedTransactionID *uuid.UUID `json:"linkedTransactionId,omitempty"`

	Exchange   string    `json:"exchange,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsFundingLeg reports whether this row is the USDT sell side of a
// funded purchase.
func (t *Transaction) IsFundingLeg() bool {
	return t.Kind == KindSell && t.LinkedTransactionID != nil
}
