package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers price lookup routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ticker", func(r chi.Router) {
		r.Post("/last", h.HandleLastQuote)
	})
}
