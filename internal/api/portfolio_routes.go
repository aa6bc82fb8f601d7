package api

import (
	"net/http"

	"github.com/thanhng/coinfolio-backend/internal/models"
	"github.com/thanhng/coinfolio-backend/internal/money"
)

type portfolioDisplay struct {
	TotalValue    string `json:"totalValue"`
	TotalValueVnd string `json:"totalValueVnd"`
	TotalInvested string `json:"totalInvested"`
	RealizedPL    string `json:"realizedPl"`
	UnrealizedPL  string `json:"unrealizedPl"`
}

type portfolioResponse struct {
	Summary *models.PortfolioSummary `json:"summary"`
	Display portfolioDisplay         `json:"display"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Aggregator.SummarizeAll(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		Summary: summary,
		Display: portfolioDisplay{
			TotalValue:    money.FormatUSD(summary.TotalValueUsd),
			TotalValueVnd: money.FormatVND(summary.TotalValueVnd),
			TotalInvested: money.FormatUSD(summary.TotalInvestedUsd),
			RealizedPL:    money.FormatUSD(summary.RealizedPLUsd),
			UnrealizedPL:  money.FormatUSD(summary.UnrealizedPLUsd),
		},
	})
}

func (s *Server) handlePortfolioAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := s.deps.Assets.GetBySymbol(ctx, r.PathValue("symbol"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	summary, err := s.deps.Aggregator.Summarize(ctx, asset.ID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.deps.Assets.List(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}
