// Package handlers provides HTTP handlers for price lookups.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
)

// QuoteSource resolves the latest quote of a ticker
type QuoteSource interface {
	LastQuote(ctx context.Context, ticker string) (*domain.Quote, error)
}

// Handler handles price lookup HTTP requests
type Handler struct {
	quotes QuoteSource
	log    zerolog.Logger
}

// NewHandler creates a new price lookup handler
func NewHandler(quotes QuoteSource, log zerolog.Logger) *Handler {
	return &Handler{
		quotes: quotes,
		log:    log.With().Str("handler", "historical").Logger(),
	}
}

// LastQuoteRequest is the body of POST /api/ticker/last
type LastQuoteRequest struct {
	Ticker *string `json:"ticker"`
}

// LastQuoteResponse is the success body of POST /api/ticker/last
type LastQuoteResponse struct {
	OK bool `json:"ok"`
	*domain.Quote
}

// HandleLastQuote handles POST /api/ticker/last
func (h *Handler) HandleLastQuote(w http.ResponseWriter, r *http.Request) {
	var req LastQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, r, domain.NewInputError("Request body must be a JSON object."), h.log)
		return
	}
	if req.Ticker == nil {
		utils.WriteError(w, r, domain.NewInputError("Provide a single ticker string."), h.log)
		return
	}

	quote, err := h.quotes.LastQuote(r.Context(), *req.Ticker)
	if err != nil {
		utils.WriteError(w, r, err, h.log)
		return
	}

	utils.WriteJSON(w, http.StatusOK, LastQuoteResponse{OK: true, Quote: quote}, h.log)
}
