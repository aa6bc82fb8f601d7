package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/ledger"
	"github.com/thanhng/coinfolio-backend/internal/models"
)

type p2pIntentJSON struct {
	Side         string          `json:"side"`
	UsdtAmount   decimal.Decimal `json:"usdtAmount"`
	VndAmount    decimal.Decimal `json:"vndAmount"`
	Counterparty string          `json:"counterparty"`
	Note         string          `json:"note"`
	OccurredAt   *time.Time      `json:"occurredAt"`
}

func (s *Server) handleRecordP2P(w http.ResponseWriter, r *http.Request) {
	var body p2pIntentJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	intent := ledger.P2PIntent{
		Side:         body.Side,
		UsdtAmount:   body.UsdtAmount,
		VndAmount:    body.VndAmount,
		Counterparty: body.Counterparty,
		Note:         body.Note,
	}
	if body.OccurredAt != nil {
		intent.OccurredAt = *body.OccurredAt
	}

	trade, leg, err := s.deps.Recorder.RecordP2P(r.Context(), intent)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"trade":       trade,
		"transaction": leg,
	})
}

func (s *Server) handleListP2P(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.P2P.List(r.Context(), parseLimit(r, defaultQueryLimit), parseOffset(r))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if trades == nil {
		trades = []models.P2PTrade{}
	}
	writeJSON(w, http.StatusOK, trades)
}
