package models

// QuoteRequest is the inbound body of the quote endpoint.
type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
