package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/httputil"
	"github.com/thanhng/coinfolio-backend/internal/models"
	"github.com/thanhng/coinfolio-backend/internal/portfolio"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

var _ portfolio.PriceSource = (*CoinGeckoClient)(nil)

// coingeckoIDs maps ticker symbols to CoinGecko coin ids for the
// assets people actually hold here. Unknown symbols can be added via
// COINGECKO_IDS in the environment.
var coingeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LINK": "chainlink",
	"AVAX": "avalanche-2",
	"LTC":  "litecoin",
	"ATOM": "cosmos",
	"NEAR": "near",
}

type cachedPrice struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// CoinGeckoClient fetches USD spot prices. Results are cached per
// symbol; the TTL is injected so tests can control expiry.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	ids        map[string]string

	mu       sync.Mutex
	cache    map[string]cachedPrice
	cacheTTL time.Duration
}

type CoinGeckoOptions struct {
	CacheTTL time.Duration
	ExtraIDs map[string]string // symbol -> coingecko id overrides
}

func NewCoinGeckoClient(opts CoinGeckoOptions) *CoinGeckoClient {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	ids := make(map[string]string, len(coingeckoIDs)+len(opts.ExtraIDs))
	for sym, id := range coingeckoIDs {
		ids[sym] = id
	}
	for sym, id := range opts.ExtraIDs {
		ids[models.NormalizeSymbol(sym)] = id
	}

	return &CoinGeckoClient{
		baseURL:    coingeckoBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
		ids:      ids,
		cache:    make(map[string]cachedPrice),
		cacheTTL: ttl,
	}
}

// GetPrice returns the current USD price of symbol, from cache when
// fresh.
func (c *CoinGeckoClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = models.NormalizeSymbol(symbol)

	c.mu.Lock()
	if cached, ok := c.cache[symbol]; ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.mu.Unlock()
		return cached.price, nil
	}
	c.mu.Unlock()

	id, ok := c.ids[symbol]
	if !ok {
		// CoinGecko ids are lower-case and many minor coins use the
		// plain ticker.
		id = strings.ToLower(symbol)
	}

	reqURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.baseURL, url.QueryEscape(id))

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return decimal.Zero, fmt.Errorf("decode: %w", err)
	}

	entry, ok := data[id]
	if !ok || entry.USD <= 0 {
		return decimal.Zero, fmt.Errorf("no price for %s (id %s)", symbol, id)
	}

	price := decimal.NewFromFloat(entry.USD)
	c.mu.Lock()
	c.cache[symbol] = cachedPrice{price: price, fetchedAt: time.Now()}
	c.mu.Unlock()

	fmt.Printf("[COINGECKO] %s = %s USD\n", symbol, price.String())
	return price, nil
}
