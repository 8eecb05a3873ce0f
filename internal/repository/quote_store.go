package repository

import (
	"context"
	"encoding/json"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
)

const quoteKeyPrefix = "quote:"

// CacheQuoteStore implements QuoteStore over a cache.Service backend
// (in-process map or Redis, selected by config). Entries are written without
// an expiration: freshness is the resolver's call, and even an ancient entry
// must stay readable to back a stale response.
type CacheQuoteStore struct {
	cache cache.Service
}

func NewCacheQuoteStore(c cache.Service) domrepo.QuoteStore {
	return &CacheQuoteStore{cache: c}
}

func (s *CacheQuoteStore) Get(ctx context.Context, symbol string) (*models.CachedQuote, bool) {
	var raw string
	if err := s.cache.Get(ctx, quoteKeyPrefix+symbol, &raw); err != nil {
		return nil, false
	}
	var cq models.CachedQuote
	if err := json.Unmarshal([]byte(raw), &cq); err != nil {
		return nil, false
	}
	return &cq, true
}

func (s *CacheQuoteStore) Put(ctx context.Context, symbol string, q models.Quote, insertedAt time.Time) error {
	b, err := json.Marshal(models.CachedQuote{Quote: q, InsertedAt: insertedAt})
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, quoteKeyPrefix+symbol, string(b), 0)
}
