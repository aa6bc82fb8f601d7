package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thanhng/coinfolio-backend/internal/ledger"
	"github.com/thanhng/coinfolio-backend/internal/models"
	"github.com/thanhng/coinfolio-backend/internal/portfolio"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// SnapshotRunner triggers an out-of-schedule portfolio snapshot.
type SnapshotRunner interface {
	RunNow(ctx context.Context) (*models.PortfolioSnapshot, error)
}

// Pinger reports backing-store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the REST surface talks to. Stores are
// interfaces so handler tests run on the in-memory implementations.
type Deps struct {
	Recorder     *ledger.Recorder
	Aggregator   *portfolio.Aggregator
	Assets       models.AssetStore
	Transactions models.TransactionStore
	P2P          models.P2PStore
	Snapshots    models.SnapshotStore
	Snapshotter  SnapshotRunner // optional
	Pinger       Pinger         // optional
}

type Server struct {
	deps       Deps
	httpServer *http.Server
	apiKey     string
}

func NewServer(deps Deps, port int, apiKey, corsOrigin string) *Server {
	s := &Server{deps: deps, apiKey: apiKey}

	mux := http.NewServeMux()

	// Ledger routes
	mux.HandleFunc("POST /v1/transactions", s.handleRecordTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("PUT /v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /v1/ledger/orphans", s.handleOrphans)

	// Portfolio routes
	mux.HandleFunc("GET /v1/assets", s.handleListAssets)
	mux.HandleFunc("GET /v1/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /v1/portfolio/{symbol}", s.handlePortfolioAsset)

	// P2P routes
	mux.HandleFunc("POST /v1/p2p", s.handleRecordP2P)
	mux.HandleFunc("GET /v1/p2p", s.handleListP2P)

	// Snapshot routes
	mux.HandleFunc("GET /v1/snapshots", s.handleListSnapshots)
	mux.HandleFunc("POST /v1/snapshots/run", s.handleRunSnapshot)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func parseOffset(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps domain errors onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ledger.ErrEmptySymbol),
		errors.Is(err, ledger.ErrBadQuantity),
		errors.Is(err, ledger.ErrBadPrice),
		errors.Is(err, ledger.ErrNegativeFee),
		errors.Is(err, ledger.ErrBadKind),
		errors.Is(err, ledger.ErrUsdtSelfFunded),
		errors.Is(err, ledger.ErrEditFundingLeg),
		errors.Is(err, ledger.ErrBadP2PSide),
		errors.Is(err, ledger.ErrBadP2PAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		fmt.Printf("[API] Internal error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
