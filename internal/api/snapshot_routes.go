package api

import (
	"net/http"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.deps.Snapshots.List(r.Context(), parseLimit(r, defaultQueryLimit))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if snaps == nil {
		snaps = []models.PortfolioSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleRunSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.deps.Snapshotter == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot scheduler not configured")
		return
	}

	snap, err := s.deps.Snapshotter.RunNow(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}
