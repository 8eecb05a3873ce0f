package usecase

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	xlogger "StockPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingSymbol is returned before any upstream call is attempted.
	ErrMissingSymbol = errors.New("symbol is required")

	// ErrUnavailable is returned when every tier failed and no cache entry
	// exists to fall back on.
	ErrUnavailable = errors.New("quote data unavailable")
)

var oneHundred = decimal.NewFromInt(100)

// QuoteResolver produces a Quote for a symbol by walking upstream data tiers
// in priority order, caching successes and serving stale entries when the
// provider is down.
type QuoteResolver struct {
	market  domrepo.MarketData
	store   domrepo.QuoteStore
	metrics domrepo.Metrics
	logger  *xlogger.Logger

	ttl           time.Duration
	tierTimeout   time.Duration
	historyMonths int
}

func NewQuoteResolver(
	market domrepo.MarketData,
	store domrepo.QuoteStore,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
	ttl, tierTimeout time.Duration,
	historyMonths int,
) *QuoteResolver {
	return &QuoteResolver{
		market:        market,
		store:         store,
		metrics:       metrics,
		logger:        logger,
		ttl:           ttl,
		tierTimeout:   tierTimeout,
		historyMonths: historyMonths,
	}
}

// priceSnapshot is the usable output of a single tier, pre-formatting.
type priceSnapshot struct {
	source    string
	price     decimal.Decimal
	prevClose decimal.Decimal
	change    decimal.Decimal
	changePct decimal.Decimal
	high      decimal.Decimal
	low       decimal.Decimal
}

// Resolve returns the Quote for a raw symbol.
//
// Flow: normalize -> fresh cache hit -> tier cascade -> on success cache and
// return; on total failure serve the cached entry of any age flagged stale,
// or fail with ErrUnavailable when there is none.
func (r *QuoteResolver) Resolve(ctx context.Context, rawSymbol string) (*models.Quote, error) {
	symbol := domrepo.NormalizeSymbol(rawSymbol)
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	now := time.Now().UTC()
	cached, hasCached := r.store.Get(ctx, symbol)
	if hasCached && now.Sub(cached.InsertedAt) < r.ttl {
		r.metrics.RecordCacheHit()
		r.logger.Debug("serving fresh cached quote", xlogger.String("symbol", symbol))
		q := cached.Quote
		return &q, nil
	}

	snap := r.cascade(ctx, symbol)
	if snap == nil {
		if hasCached {
			// Last known good quote, flagged. The stored entry itself is
			// left untouched so a later success still overwrites cleanly.
			r.metrics.RecordResolution(cached.Quote.Source, true)
			r.logger.Warn("all tiers failed, serving stale quote",
				xlogger.String("symbol", symbol),
				xlogger.Duration("age", now.Sub(cached.InsertedAt)),
			)
			q := cached.Quote
			q.Stale = true
			return &q, nil
		}
		return nil, ErrUnavailable
	}

	quote := r.buildQuote(symbol, snap, r.historical(ctx, symbol, cached), now)
	if err := r.store.Put(ctx, symbol, *quote, now); err != nil {
		r.logger.Warn("quote cache write failed", xlogger.String("symbol", symbol), xlogger.Error(err))
	}
	r.metrics.RecordResolution(quote.Source, false)
	return quote, nil
}

// cascade tries each tier in priority order and returns the first usable
// snapshot, or nil when every tier failed. Tier errors are soft: logged,
// counted, skipped.
func (r *QuoteResolver) cascade(ctx context.Context, symbol string) *priceSnapshot {
	tiers := []struct {
		name    string
		attempt func(ctx context.Context, symbol string) (*priceSnapshot, error)
	}{
		{models.SourceIntraday, r.attemptIntraday},
		{models.SourceDaily, r.attemptDaily},
		{models.SourceQuote, r.attemptGlobalQuote},
	}

	for _, tier := range tiers {
		tctx, cancel := context.WithTimeout(ctx, r.tierTimeout)
		start := time.Now()
		snap, err := tier.attempt(tctx, symbol)
		cancel()
		r.metrics.RecordUpstreamLatency(tier.name, time.Since(start).Seconds())

		if err != nil {
			r.metrics.RecordTierSkip(tier.name, skipReason(err))
			r.logger.Warn("tier skipped",
				xlogger.String("symbol", symbol),
				xlogger.String("tier", tier.name),
				xlogger.Error(err),
			)
			continue
		}
		return snap
	}
	return nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domrepo.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domrepo.ErrMalformed):
		return "malformed"
	case errors.Is(err, domrepo.ErrUpstream):
		return "upstream_error"
	default:
		return "transport"
	}
}

func (r *QuoteResolver) attemptIntraday(ctx context.Context, symbol string) (*priceSnapshot, error) {
	bars, err := r.market.Intraday(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return snapshotFromBars(models.SourceIntraday, bars)
}

func (r *QuoteResolver) attemptDaily(ctx context.Context, symbol string) (*priceSnapshot, error) {
	bars, err := r.market.DailyAdjusted(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return snapshotFromBars(models.SourceDaily, bars)
}

func (r *QuoteResolver) attemptGlobalQuote(ctx context.Context, symbol string) (*priceSnapshot, error) {
	g, err := r.market.GlobalQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !g.Price.IsPositive() {
		return nil, domrepo.ErrMalformed
	}

	// Provider-reported fields win; anything absent defaults to the
	// current price before deltas are derived.
	price := g.Price
	prev := valueOr(g.PreviousClose, price)
	change := valueOr(g.Change, price.Sub(prev))
	changePct := valueOr(g.ChangePercent, percentChange(change, prev))

	return &priceSnapshot{
		source:    models.SourceQuote,
		price:     price,
		prevClose: prev,
		change:    change,
		changePct: changePct,
		high:      valueOr(g.High, price),
		low:       valueOr(g.Low, price),
	}, nil
}

// snapshotFromBars applies the two-observations pattern shared by the
// intraday and daily tiers: current price from the latest close, previous
// close from the one before it (or the latest itself when the series has a
// single observation).
func snapshotFromBars(source string, bars []models.Bar) (*priceSnapshot, error) {
	if len(bars) == 0 {
		return nil, domrepo.ErrMalformed
	}
	latest := bars[0]
	if !latest.Close.IsPositive() {
		return nil, domrepo.ErrMalformed
	}

	prev := latest.Close
	if len(bars) > 1 && bars[1].Close.IsPositive() {
		prev = bars[1].Close
	}

	change := latest.Close.Sub(prev)
	return &priceSnapshot{
		source:    source,
		price:     latest.Close,
		prevClose: prev,
		change:    change,
		changePct: percentChange(change, prev),
		high:      latest.High,
		low:       latest.Low,
	}, nil
}

// historical returns the monthly closing series for the chart. A cache entry
// that already carries history is reused; history barely moves within a
// process lifetime and a monthly fetch spends rate-limit budget.
func (r *QuoteResolver) historical(ctx context.Context, symbol string, cached *models.CachedQuote) []models.HistoricalPoint {
	if cached != nil && len(cached.Quote.HistoricalData) > 0 {
		return cached.Quote.HistoricalData
	}

	mctx, cancel := context.WithTimeout(ctx, r.tierTimeout)
	defer cancel()
	bars, err := r.market.Monthly(mctx, symbol)
	if err != nil {
		r.logger.Warn("monthly history fetch failed",
			xlogger.String("symbol", symbol),
			xlogger.Error(err),
		)
		return []models.HistoricalPoint{}
	}

	n := r.historyMonths
	if n > len(bars) {
		n = len(bars)
	}

	// Bars arrive newest first; the chart wants chronological ascending.
	points := make([]models.HistoricalPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		points = append(points, models.HistoricalPoint{
			Month: monthLabel(bars[i].Date),
			Value: bars[i].Close.Round(2).InexactFloat64(),
		})
	}
	return points
}

func (r *QuoteResolver) buildQuote(symbol string, snap *priceSnapshot, history []models.HistoricalPoint, now time.Time) *models.Quote {
	display := domrepo.DisplaySymbol(symbol)
	return &models.Quote{
		Symbol:         display,
		Name:           display + " Limited",
		Price:          snap.price.StringFixed(2),
		Change:         snap.change.StringFixed(2),
		ChangePercent:  snap.changePct.StringFixed(2),
		High:           snap.high.StringFixed(2),
		Low:            snap.low.StringFixed(2),
		PreviousClose:  snap.prevClose.StringFixed(2),
		HistoricalData: history,
		LastUpdate:     now,
		Source:         snap.source,
		Stale:          false,
	}
}

// percentChange is change/base*100, or zero when base is zero.
func percentChange(change, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return change.Div(base).Mul(oneHundred)
}

func valueOr(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return def
}

func monthLabel(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("Jan 2006")
	}
	return date
}
