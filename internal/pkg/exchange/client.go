package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/323network/platform/internal/pkg/cache"
	"github.com/323network/platform/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

const defaultQuoteURL = "https://api.exchangerate-api.com/v4/latest/USD"

// QuoteService supplies the current USD to BRL rate. Callers are
// expected to substitute a fallback rate when this fails; rate
// unavailability must never fail a checkout.
type QuoteService interface {
	USDToBRL(ctx context.Context) (float64, error)
}

// HTTPQuoteService fetches the latest rates from the public quote API.
type HTTPQuoteService struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPQuoteService builds the quote client from environment config.
func NewHTTPQuoteService() *HTTPQuoteService {
	return &HTTPQuoteService{
		URL: strings.TrimSpace(env.GetEnv("EXCHANGE_RATE_URL", defaultQuoteURL)),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type quoteResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (s *HTTPQuoteService) USDToBRL(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("quote service returned status %d", resp.StatusCode)
	}

	var out quoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("quote service returned invalid body: %w", err)
	}
	rate, ok := out.Rates["BRL"]
	if !ok || rate <= 0 {
		return 0, errors.New("quote service response is missing the BRL rate")
	}
	return rate, nil
}

const (
	rateCacheKey = "exchange:usd_brl"
	rateCacheTTL = 5 * time.Minute
)

// CachedQuoteService caches rates in Redis for a short window. Cache
// failures degrade to the wrapped service; a missed store is logged and
// ignored.
type CachedQuoteService struct {
	Inner QuoteService
}

// NewCachedQuoteService wraps a quote source with the Redis cache.
func NewCachedQuoteService(inner QuoteService) *CachedQuoteService {
	return &CachedQuoteService{Inner: inner}
}

func (s *CachedQuoteService) USDToBRL(ctx context.Context) (float64, error) {
	if rate, err := cache.GetFloat(rateCacheKey); err == nil && rate > 0 {
		return rate, nil
	}

	rate, err := s.Inner.USDToBRL(ctx)
	if err != nil {
		return 0, err
	}

	if err := cache.Set(rateCacheKey, rate, rateCacheTTL); err != nil {
		log.Warnf("[Exchange] failed to cache USD/BRL rate: %v", err)
	}
	return rate, nil
}
