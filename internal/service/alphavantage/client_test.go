package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"

	"github.com/stretchr/testify/require"
)

// stubServer serves canned JSON per provider function and counts requests.
func stubServer(t *testing.T, bodies map[string]string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fn := r.URL.Query().Get("function")
		body, ok := bodies[fn]
		if !ok {
			t.Errorf("unexpected function %q", fn)
			http.Error(w, "unexpected function", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGlobalQuoteParsesSnapshot(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnGlobalQuote: `{
			"Global Quote": {
				"01. symbol": "TCS.NS",
				"03. high": "4120.5000",
				"04. low": "4050.0000",
				"05. price": "4100.0000",
				"08. previous close": "4080.0000",
				"09. change": "20.0000",
				"10. change percent": "0.4902%"
			}
		}`,
	})

	c := New("demo", srv.URL, time.Second)
	snap, err := c.GlobalQuote(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Equal(t, "4100", snap.Price.String())
	require.NotNil(t, snap.PreviousClose)
	require.Equal(t, "4080", snap.PreviousClose.String())
	require.NotNil(t, snap.ChangePercent)
	require.Equal(t, "0.4902", snap.ChangePercent.String())
	require.NotNil(t, snap.High)
	require.Equal(t, "4120.5", snap.High.String())
}

func TestGlobalQuoteMissingObject(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{fnGlobalQuote: `{}`})

	_, err := New("demo", srv.URL, time.Second).GlobalQuote(context.Background(), "TCS.NS")
	require.ErrorIs(t, err, drepo.ErrMalformed)
}

func TestNoteAdvisoryIsRateLimited(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnDaily: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
	})

	_, err := New("demo", srv.URL, time.Second).DailyAdjusted(context.Background(), "AAPL")
	require.ErrorIs(t, err, drepo.ErrRateLimited)
}

func TestInformationAdvisoryIsRateLimited(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnIntraday: `{"Information": "API rate limit reached."}`,
	})

	_, err := New("demo", srv.URL, time.Second).Intraday(context.Background(), "AAPL")
	require.ErrorIs(t, err, drepo.ErrRateLimited)
}

func TestErrorMessageIsUpstream(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnGlobalQuote: `{"Error Message": "Invalid API call."}`,
	})

	_, err := New("demo", srv.URL, time.Second).GlobalQuote(context.Background(), "NOPE")
	require.ErrorIs(t, err, drepo.ErrUpstream)
	require.Contains(t, err.Error(), "Invalid API call")
}

func TestIntradaySeriesNewestFirst(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnIntraday: `{
			"Meta Data": {"2. Symbol": "TCS.NS"},
			"Time Series (5min)": {
				"2025-08-29 15:25:00": {"2. high": "4110.00", "3. low": "4040.00", "4. close": "4080.00"},
				"2025-08-29 15:30:00": {"2. high": "4120.00", "3. low": "4050.00", "4. close": "4100.00"},
				"2025-08-29 15:20:00": {"2. high": "4105.00", "3. low": "4030.00", "4. close": "4060.00"}
			}
		}`,
	})

	bars, err := New("demo", srv.URL, time.Second).Intraday(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, "2025-08-29 15:30:00", bars[0].Date)
	require.Equal(t, "4100", bars[0].Close.String())
	require.Equal(t, "2025-08-29 15:20:00", bars[2].Date)
}

func TestSeriesSkipsUnparseableObservations(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnMonthly: `{
			"Monthly Time Series": {
				"2025-08-29": {"2. high": "110.00", "3. low": "90.00", "4. close": "100.00"},
				"2025-07-31": {"2. high": "105.00", "3. low": "85.00", "4. close": "not-a-number"}
			}
		}`,
	})

	bars, err := New("demo", srv.URL, time.Second).Monthly(context.Background(), "IBM")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, "2025-08-29", bars[0].Date)
}

func TestSeriesMissingIsMalformed(t *testing.T) {
	srv, _ := stubServer(t, map[string]string{
		fnDaily: `{"Meta Data": {"2. Symbol": "AAPL"}}`,
	})

	_, err := New("demo", srv.URL, time.Second).DailyAdjusted(context.Background(), "AAPL")
	require.ErrorIs(t, err, drepo.ErrMalformed)
}

func TestExhaustedLimiterShortCircuits(t *testing.T) {
	srv, calls := stubServer(t, map[string]string{
		fnGlobalQuote: `{"Global Quote": {"05. price": "10.00"}}`,
	})

	c := New("demo", srv.URL, time.Second, WithLimiter(ratelimit.New(1, 0)))

	_, err := c.GlobalQuote(context.Background(), "IBM")
	require.NoError(t, err)
	require.Equal(t, 1, *calls)

	// Bucket drained with no refill: the request never leaves the process.
	_, err = c.GlobalQuote(context.Background(), "IBM")
	require.ErrorIs(t, err, drepo.ErrRateLimited)
	require.Equal(t, 1, *calls)
}
