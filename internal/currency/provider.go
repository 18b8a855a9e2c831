// Package currency fetches exchange rates from the public PrivatBank
// feed and normalizes them for the shop API.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/harborline/shopd/internal/observability/tracing"
	"go.uber.org/zap"
)

const defaultFeedURL = "https://api.privatbank.ua/p24api/pubinfo?exchange&coursid=11"

// Rate is one normalized exchange rate.
type Rate struct {
	Currency string  `json:"currency"`
	Base     string  `json:"base"`
	Buy      float64 `json:"buy"`
	Sale     float64 `json:"sale"`
}

// Provider fetches rates over HTTP.
type Provider struct {
	log    *zap.Logger
	client *http.Client
	url    string
}

// Option tweaks the provider.
type Option func(*Provider)

// WithURL points the provider at a different feed; tests use it.
func WithURL(url string) Option {
	return func(p *Provider) { p.url = url }
}

// NewProvider builds a provider with a bounded request timeout.
func NewProvider(log *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		log:    log.Named("currency.provider"),
		client: tracing.WrapHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		url:    defaultFeedURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// feedItem is the upstream wire shape; numeric fields arrive as
// strings.
type feedItem struct {
	Ccy     string `json:"ccy"`
	Code    string `json:"code"`
	BaseCcy string `json:"base_ccy"`
	Base    string `json:"base"`
	Buy     string `json:"buy"`
	Sale    string `json:"sale"`
}

// GetRates fetches and normalizes the current rates.
func (p *Provider) GetRates(ctx context.Context) ([]Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch currency rates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("currency provider returned status %d", res.StatusCode)
	}

	var items []feedItem
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode currency rates: %w", err)
	}

	rates := make([]Rate, 0, len(items))
	for _, item := range items {
		rate := Rate{
			Currency: firstNonEmpty(item.Ccy, item.Code),
			Base:     firstNonEmpty(item.BaseCcy, item.Base),
			Buy:      parseRate(item.Buy),
			Sale:     parseRate(item.Sale),
		}
		if rate.Currency == "" {
			p.log.Warn("skipping rate without a currency code")
			continue
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseRate(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
