package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	simplePricePath = "/simple/price"

	clientTimeout = 30 * time.Second
)

// CoinGecko fetches batched prices from the public simple/price endpoint.
// The HTTP client is created lazily on first use and reused across cycles.
type CoinGecko struct {
	BaseURL string
	Client  *http.Client

	mu sync.Mutex
}

var _ application.PriceSource = (*CoinGecko)(nil)

func (g *CoinGecko) httpClient() *http.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Client == nil {
		g.Client = &http.Client{Timeout: clientTimeout}
	}
	return g.Client
}

func (g *CoinGecko) FetchPrices(ctx context.Context, assetIDs, currencies []string) (domain.SimplePrice, error) {
	base := g.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, application.NewConfigurationError(fmt.Sprintf("invalid base url: %s", err))
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + simplePricePath
	q := u.Query()
	q.Set("ids", strings.Join(assetIDs, ","))
	q.Set("vs_currencies", strings.Join(currencies, ","))
	q.Set("include_24hr_change", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_market_cap", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, application.NewTransportError(fmt.Errorf("create request: %w", err))
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, application.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, application.NewStatusError(resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return nil, application.NewParseError(fmt.Errorf("unexpected content type %q", ct))
	}

	var data domain.SimplePrice
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, application.NewParseError(fmt.Errorf("decode response: %w", err))
	}
	return data, nil
}

// Close releases idle connections held by the session. Idempotent.
func (g *CoinGecko) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Client != nil {
		g.Client.CloseIdleConnections()
	}
}
