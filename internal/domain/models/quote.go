package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sources identify which upstream tier produced the current price.
const (
	SourceIntraday = "intraday"
	SourceDaily    = "daily"
	SourceQuote    = "quote"
)

// HistoricalPoint is one monthly closing price for the dashboard chart.
type HistoricalPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Quote is the resolved result for one symbol. Numeric fields are fixed
// two-decimal strings so the display layer never sees raw floats.
type Quote struct {
	Symbol         string            `json:"symbol"`
	Name           string            `json:"name"`
	Price          string            `json:"price"`
	Change         string            `json:"change"`
	ChangePercent  string            `json:"changePercent"`
	High           string            `json:"high"`
	Low            string            `json:"low"`
	PreviousClose  string            `json:"previousClose"`
	HistoricalData []HistoricalPoint `json:"historicalData"`
	LastUpdate     time.Time         `json:"lastUpdate"`
	Source         string            `json:"source"`
	Stale          bool              `json:"stale"`
}

// CachedQuote pairs a Quote with the time it entered the cache.
type CachedQuote struct {
	Quote      Quote     `json:"quote"`
	InsertedAt time.Time `json:"insertedAt"`
}

// Bar is a single observation from a time-series endpoint.
type Bar struct {
	Date  string
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// GlobalSnapshot is the provider's latest-quote snapshot. Only the price is
// guaranteed; nil pointers mean the provider omitted the field.
type GlobalSnapshot struct {
	Price         decimal.Decimal
	PreviousClose *decimal.Decimal
	Change        *decimal.Decimal
	ChangePercent *decimal.Decimal
	High          *decimal.Decimal
	Low           *decimal.Decimal
}
