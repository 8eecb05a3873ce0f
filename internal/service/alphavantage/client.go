package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	xhttp "StockPulse/pkg/http"

	"github.com/shopspring/decimal"
)

// Provider function names.
const (
	fnIntraday    = "TIME_SERIES_INTRADAY"
	fnDaily       = "TIME_SERIES_DAILY_ADJUSTED"
	fnGlobalQuote = "GLOBAL_QUOTE"
	fnMonthly     = "TIME_SERIES_MONTHLY"
)

// Series field keys as the provider spells them.
const (
	fieldHigh  = "2. high"
	fieldLow   = "3. low"
	fieldClose = "4. close"
)

// Client implements a MarketData backed by the Alpha Vantage query API.
type Client struct {
	apiKey   string
	baseURL  string
	interval string
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
}

// Option configures Client.
type Option func(*Client)

// WithLimiter guards upstream calls with a local token bucket.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithInterval sets the intraday series interval (default 5min).
func WithInterval(interval string) Option {
	return func(c *Client) { c.interval = interval }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a MarketData client for the Alpha Vantage API.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) drepo.MarketData {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		interval: "5min",
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// payload is a decoded provider response, keyed by top-level field name.
type payload map[string]json.RawMessage

// Intraday returns the fine-grained recent series, newest first.
func (c *Client) Intraday(ctx context.Context, symbol string) ([]models.Bar, error) {
	p, err := c.query(ctx, fnIntraday, symbol, map[string]string{
		"interval":   c.interval,
		"outputsize": "compact",
	})
	if err != nil {
		return nil, err
	}
	return parseSeries(p, fnIntraday)
}

// DailyAdjusted returns the daily series, newest first.
func (c *Client) DailyAdjusted(ctx context.Context, symbol string) ([]models.Bar, error) {
	p, err := c.query(ctx, fnDaily, symbol, nil)
	if err != nil {
		return nil, err
	}
	return parseSeries(p, fnDaily)
}

// Monthly returns the monthly series, newest first.
func (c *Client) Monthly(ctx context.Context, symbol string) ([]models.Bar, error) {
	p, err := c.query(ctx, fnMonthly, symbol, nil)
	if err != nil {
		return nil, err
	}
	return parseSeries(p, fnMonthly)
}

// GlobalQuote returns the provider's latest-quote snapshot.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (*models.GlobalSnapshot, error) {
	p, err := c.query(ctx, fnGlobalQuote, symbol, nil)
	if err != nil {
		return nil, err
	}

	raw, ok := p["Global Quote"]
	if !ok {
		return nil, fmt.Errorf("%s: missing quote object: %w", fnGlobalQuote, drepo.ErrMalformed)
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%s: decode quote object: %w", fnGlobalQuote, drepo.ErrMalformed)
	}

	price, err := decimal.NewFromString(fields["05. price"])
	if err != nil {
		return nil, fmt.Errorf("%s: price %q: %w", fnGlobalQuote, fields["05. price"], drepo.ErrMalformed)
	}

	snap := &models.GlobalSnapshot{Price: price}
	snap.High = parseOptional(fields["03. high"])
	snap.Low = parseOptional(fields["04. low"])
	snap.PreviousClose = parseOptional(fields["08. previous close"])
	snap.Change = parseOptional(fields["09. change"])
	snap.ChangePercent = parseOptional(strings.TrimSuffix(strings.TrimSpace(fields["10. change percent"]), "%"))
	return snap, nil
}

func (c *Client) query(ctx context.Context, function, symbol string, extra map[string]string) (payload, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, fmt.Errorf("%s: local request budget exhausted: %w", function, drepo.ErrRateLimited)
	}

	params := map[string][]string{
		"function": {function},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}
	for k, v := range extra {
		params[k] = []string{v}
	}

	var p payload
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL,
		QueryParams: params,
	}, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}

	// Rate-limit advisory and hard errors ride in the payload with a 200.
	if _, ok := p["Note"]; ok {
		return nil, fmt.Errorf("%s: call frequency advisory: %w", function, drepo.ErrRateLimited)
	}
	if _, ok := p["Information"]; ok {
		return nil, fmt.Errorf("%s: call frequency advisory: %w", function, drepo.ErrRateLimited)
	}
	if raw, ok := p["Error Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return nil, fmt.Errorf("%s: %s: %w", function, msg, drepo.ErrUpstream)
	}

	return p, nil
}

// parseSeries finds the time-series object in a payload and flattens it into
// bars sorted newest first. The series key varies per function ("Time Series
// (5min)", "Time Series (Daily)", "Monthly Time Series"), so it is matched
// structurally rather than by exact name.
func parseSeries(p payload, function string) ([]models.Bar, error) {
	var series map[string]map[string]string
	for key, raw := range p {
		if !strings.Contains(key, "Time Series") {
			continue
		}
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("%s: decode series %q: %w", function, key, drepo.ErrMalformed)
		}
		break
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: missing time series: %w", function, drepo.ErrMalformed)
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	// Provider dates are "2006-01-02" or "2006-01-02 15:04:05"; both sort
	// chronologically as strings.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	bars := make([]models.Bar, 0, len(dates))
	for _, d := range dates {
		fields := series[d]
		closePrice, err := decimal.NewFromString(fields[fieldClose])
		if err != nil {
			continue
		}
		bar := models.Bar{Date: d, Close: closePrice, High: closePrice, Low: closePrice}
		if v, err := decimal.NewFromString(fields[fieldHigh]); err == nil {
			bar.High = v
		}
		if v, err := decimal.NewFromString(fields[fieldLow]); err == nil {
			bar.Low = v
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: no parseable observations: %w", function, drepo.ErrMalformed)
	}
	return bars, nil
}

func parseOptional(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &v
}
