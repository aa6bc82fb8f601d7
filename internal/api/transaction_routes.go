package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/ledger"
	"github.com/thanhng/coinfolio-backend/internal/models"
)

type tradeIntentJSON struct {
	Symbol       string          `json:"symbol"`
	DisplayName  string          `json:"displayName"`
	Kind         string          `json:"kind"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Fee          decimal.Decimal `json:"fee"`
	FeeInAsset   bool            `json:"feeInAsset"`
	FundedByUsdt bool            `json:"fundedByUsdt"`
	Exchange     string          `json:"exchange"`
	Note         string          `json:"note"`
	OccurredAt   *time.Time      `json:"occurredAt"`
}

func (in *tradeIntentJSON) toIntent() ledger.TradeIntent {
	intent := ledger.TradeIntent{
		Symbol:       in.Symbol,
		DisplayName:  in.DisplayName,
		Kind:         in.Kind,
		Quantity:     in.Quantity,
		PricePerUnit: in.PricePerUnit,
		Fee:          in.Fee,
		FeeInAsset:   in.FeeInAsset,
		FundedByUsdt: in.FundedByUsdt,
		Exchange:     in.Exchange,
		Note:         in.Note,
	}
	if in.OccurredAt != nil {
		intent.OccurredAt = *in.OccurredAt
	}
	return intent
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var body tradeIntentJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	txs, err := s.deps.Recorder.Record(r.Context(), body.toIntent())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txs)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := parseLimit(r, defaultQueryLimit)
	offset := parseOffset(r)

	var (
		txs []models.Transaction
		err error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		asset, aerr := s.deps.Assets.GetBySymbol(ctx, symbol)
		if aerr != nil {
			writeLedgerError(w, aerr)
			return
		}
		txs, err = s.deps.Transactions.ListByAsset(ctx, asset.ID)
	} else {
		txs, err = s.deps.Transactions.List(ctx, limit, offset)
	}
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var body tradeIntentJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := s.deps.Recorder.Update(r.Context(), id, body.toIntent())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.deps.Recorder.Delete(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := s.deps.Recorder.Orphans(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if orphans == nil {
		orphans = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(orphans),
		"orphans": orphans,
	})
}
