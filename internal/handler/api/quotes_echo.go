package api

import (
	"errors"
	"net/http"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// unavailableMessage is the fixed body the dashboard keys its retry
// affordance on. Do not reword without updating the display layer.
const unavailableMessage = "Data temporarily unavailable due to provider rate limits. Please retry shortly."

// errorBody is the flat error shape the dashboard expects.
type errorBody struct {
	Error string `json:"error"`
}

// QuotesEchoHandler serves the quote endpoint consumed by the dashboard.
type QuotesEchoHandler struct {
	logger   *xlogger.Logger
	resolver *usecase.QuoteResolver
}

func NewQuotesEchoHandler(logger *xlogger.Logger, resolver *usecase.QuoteResolver) *QuotesEchoHandler {
	return &QuotesEchoHandler{logger: logger, resolver: resolver}
}

func (h *QuotesEchoHandler) RegisterRoutes(e *echo.Echo) {
	// The dashboard's client does not distinguish verbs; accept them all.
	// OPTIONS preflight is answered by the CORS middleware before this.
	e.Any("/fetch-stock-data", h.FetchStockData)
	e.GET("/healthz", h.Health)
}

// FetchStockData resolves a quote for the requested symbol. The response
// body shapes and status codes are fixed contracts with the display layer:
// 200 with the quote (stale or not), 503 when nothing can be served, 500
// with the failure message otherwise.
func (h *QuotesEchoHandler) FetchStockData(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verrs := xhttp.ReadAndValidateRequest(c, req); verrs != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: verrs[0].Message})
	}

	quote, err := h.resolver.Resolve(c.Request().Context(), req.Symbol)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingSymbol):
			return c.JSON(http.StatusInternalServerError, errorBody{Error: "Symbol is required"})
		case errors.Is(err, usecase.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, errorBody{Error: unavailableMessage})
		default:
			h.logger.Error("quote resolution failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
			return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *QuotesEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
