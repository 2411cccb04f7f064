package handlers

import (
	"testing"

	"github.com/aristath/frontier/internal/modules/historical"
	testutil "github.com/aristath/frontier/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	logger := zerolog.Nop()
	handler := NewHandler(historical.NewQuoteService(testutil.NewMockPriceProvider(), logger), logger)

	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
