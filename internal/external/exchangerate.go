package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/httputil"
	"github.com/thanhng/coinfolio-backend/internal/portfolio"
)

const exchangeRateURL = "https://open.er-api.com/v6/latest/USD"

// ExchangeRateClient fetches the USD->VND rate with a TTL cache. FX
// moves slowly, so the default TTL is generous.
type ExchangeRateClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig

	mu        sync.Mutex
	cached    decimal.Decimal
	lastFetch time.Time
	cacheTTL  time.Duration
}

func NewExchangeRateClient(cacheTTL time.Duration) *ExchangeRateClient {
	if cacheTTL <= 0 {
		cacheTTL = 1 * time.Hour
	}
	return &ExchangeRateClient{
		baseURL:    exchangeRateURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
		cacheTTL: cacheTTL,
	}
}

var _ portfolio.RateSource = (*ExchangeRateClient)(nil)

func (c *ExchangeRateClient) GetUsdVndRate(ctx context.Context) (portfolio.Rate, error) {
	c.mu.Lock()
	if !c.cached.IsZero() && time.Since(c.lastFetch) < c.cacheTTL {
		rate := c.cached
		c.mu.Unlock()
		return portfolio.Rate{Value: rate, Source: "open.er-api.com (cached)"}, nil
	}
	c.mu.Unlock()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	})
	if err != nil {
		return portfolio.Rate{}, fmt.Errorf("exchange rate fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return portfolio.Rate{}, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var data struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return portfolio.Rate{}, fmt.Errorf("decode: %w", err)
	}

	vnd, ok := data.Rates["VND"]
	if data.Result != "success" || !ok || vnd <= 0 {
		return portfolio.Rate{}, fmt.Errorf("no VND rate in response (result=%q)", data.Result)
	}

	rate := decimal.NewFromFloat(vnd)
	c.mu.Lock()
	c.cached = rate
	c.lastFetch = time.Now()
	c.mu.Unlock()

	fmt.Printf("[FX] USD/VND = %s\n", rate.String())
	return portfolio.Rate{Value: rate, Source: "open.er-api.com"}, nil
}
