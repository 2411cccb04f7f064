// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
)

// Optimizer runs an optimization request
type Optimizer interface {
	Optimize(ctx context.Context, req optimization.Request) (*optimization.Outcome, error)
}

// Handler handles optimization HTTP requests
type Handler struct {
	optimizer Optimizer
	log       zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(optimizer Optimizer, log zerolog.Logger) *Handler {
	return &Handler{
		optimizer: optimizer,
		log:       log.With().Str("handler", "optimization").Logger(),
	}
}

// OptimizeRequest is the body of POST /api/optimize.
// A missing "tickers" key means an empty list; an explicit null is rejected.
type OptimizeRequest struct {
	Tickers     json.RawMessage `json:"tickers"`
	RiskFree    *float64        `json:"risk_free"`
	Simulations *int            `json:"simulations"`
	Verbose     bool            `json:"verbose"`
	Seed        *uint64         `json:"seed"`
}

// OptimizeResponse is the success body of POST /api/optimize
type OptimizeResponse struct {
	OK      bool                 `json:"ok"`
	Results *optimization.Result `json:"results"`
	Plots   optimization.Plots   `json:"plots"`
	Meta    optimization.Meta    `json:"meta"`
}

func (r OptimizeRequest) toRequest() (optimization.Request, error) {
	req := optimization.Request{
		RiskFree:    r.RiskFree,
		Simulations: r.Simulations,
		Verbose:     r.Verbose,
		Seed:        r.Seed,
	}

	switch {
	case len(r.Tickers) == 0:
		req.Tickers = []string{}
	case bytes.Equal(bytes.TrimSpace(r.Tickers), []byte("null")):
		req.Tickers = nil
	default:
		if err := json.Unmarshal(r.Tickers, &req.Tickers); err != nil {
			return req, domain.NewInputError("`tickers` must be a list of strings.")
		}
	}
	return req, nil
}

// HandleOptimize handles POST /api/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var body OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, r, domain.NewInputError("Invalid request body: %s", err.Error()), h.log)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		utils.WriteError(w, r, err, h.log)
		return
	}

	outcome, err := h.optimizer.Optimize(r.Context(), req)
	if err != nil {
		utils.WriteError(w, r, err, h.log)
		return
	}

	h.log.Info().
		Str("run_id", outcome.Meta.RunID).
		Strs("tickers", outcome.Meta.UsedTickers).
		Int("simulations", outcome.Meta.Simulations).
		Msg("Optimization completed")

	utils.WriteJSON(w, http.StatusOK, OptimizeResponse{
		OK:      true,
		Results: outcome.Result,
		Plots:   outcome.Plots,
		Meta:    outcome.Meta,
	}, h.log)
}
