package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// MarketData exposes the upstream quote endpoints, one call per tier.
// Observations come back newest first.
type MarketData interface {
	Intraday(ctx context.Context, symbol string) ([]models.Bar, error)
	DailyAdjusted(ctx context.Context, symbol string) ([]models.Bar, error)
	GlobalQuote(ctx context.Context, symbol string) (*models.GlobalSnapshot, error)
	Monthly(ctx context.Context, symbol string) ([]models.Bar, error)
}

// QuoteStore holds the last resolved Quote per canonical symbol. Entries are
// only ever overwritten, never evicted: an entry of any age must stay
// readable so it can back a stale response.
type QuoteStore interface {
	Get(ctx context.Context, symbol string) (*models.CachedQuote, bool)
	Put(ctx context.Context, symbol string, q models.Quote, insertedAt time.Time) error
}

type Metrics interface {
	RecordResolution(source string, stale bool)
	RecordCacheHit()
	RecordTierSkip(tier, reason string)
	RecordUpstreamLatency(function string, seconds float64)
}
