package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubMarket struct {
	bars []models.Bar
	err  error
}

func (s *stubMarket) Intraday(context.Context, string) ([]models.Bar, error) {
	return s.bars, s.err
}

func (s *stubMarket) DailyAdjusted(context.Context, string) ([]models.Bar, error) {
	return s.bars, s.err
}

func (s *stubMarket) GlobalQuote(context.Context, string) (*models.GlobalSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.GlobalSnapshot{Price: s.bars[0].Close}, nil
}

func (s *stubMarket) Monthly(context.Context, string) ([]models.Bar, error) {
	return s.bars, s.err
}

type mapStore struct {
	entries map[string]models.CachedQuote
}

func (s *mapStore) Get(_ context.Context, symbol string) (*models.CachedQuote, bool) {
	cq, ok := s.entries[symbol]
	if !ok {
		return nil, false
	}
	return &cq, true
}

func (s *mapStore) Put(_ context.Context, symbol string, q models.Quote, at time.Time) error {
	s.entries[symbol] = models.CachedQuote{Quote: q, InsertedAt: at}
	return nil
}

type silentMetrics struct{}

func (silentMetrics) RecordResolution(string, bool)         {}
func (silentMetrics) RecordCacheHit()                       {}
func (silentMetrics) RecordTierSkip(string, string)         {}
func (silentMetrics) RecordUpstreamLatency(string, float64) {}

func newTestServer(t *testing.T, market domrepo.MarketData) *xhttp.Server {
	t.Helper()
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	resolver := usecase.NewQuoteResolver(
		market,
		&mapStore{entries: make(map[string]models.CachedQuote)},
		silentMetrics{},
		logger,
		5*time.Minute,
		time.Second,
		5,
	)
	return xhttp.NewServer(NewQuotesEchoHandler(logger, resolver))
}

func quoteBars() []models.Bar {
	return []models.Bar{
		{Date: "2025-08-29 15:30:00", High: decimal.RequireFromString("4120"), Low: decimal.RequireFromString("4050"), Close: decimal.RequireFromString("4100")},
		{Date: "2025-08-29 15:25:00", High: decimal.RequireFromString("4110"), Low: decimal.RequireFromString("4040"), Close: decimal.RequireFromString("4080")},
	}
}

func TestFetchStockDataPost(t *testing.T) {
	srv := newTestServer(t, &stubMarket{bars: quoteBars()})

	req := httptest.NewRequest(http.MethodPost, "/fetch-stock-data", strings.NewReader(`{"symbol":"TCS.NSE"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "TCS", body["symbol"])
	require.Equal(t, "4100.00", body["price"])
	require.Equal(t, "20.00", body["change"])
	require.Equal(t, "0.49", body["changePercent"])
	require.Equal(t, false, body["stale"])

	// The browser client keys on these two headers.
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-client-info")
}

func TestFetchStockDataQueryParam(t *testing.T) {
	srv := newTestServer(t, &stubMarket{bars: quoteBars()})

	req := httptest.NewRequest(http.MethodGet, "/fetch-stock-data?symbol=TCS.NSE", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "TCS", body["symbol"])
}

func TestFetchStockDataMissingSymbol(t *testing.T) {
	srv := newTestServer(t, &stubMarket{bars: quoteBars()})

	req := httptest.NewRequest(http.MethodPost, "/fetch-stock-data", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Symbol is required"}`, rec.Body.String())
}

func TestFetchStockDataUnavailable(t *testing.T) {
	srv := newTestServer(t, &stubMarket{err: domrepo.ErrRateLimited})

	req := httptest.NewRequest(http.MethodGet, "/fetch-stock-data?symbol=TCS.NSE", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"error":"`+unavailableMessage+`"}`, rec.Body.String())
}

func TestFetchStockDataPreflight(t *testing.T) {
	srv := newTestServer(t, &stubMarket{bars: quoteBars()})

	req := httptest.NewRequest(http.MethodOptions, "/fetch-stock-data", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubMarket{bars: quoteBars()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
