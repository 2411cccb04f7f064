// Package universe cleans and checks the ticker universe of an optimization request.
package universe

import (
	"regexp"
	"strings"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
)

// MaxTickers is the largest universe a single request may optimize
const MaxTickers = 50

var tickerPattern = regexp.MustCompile(`^[A-Za-z.\-]+$`)

// TickerValidator normalizes and validates ticker lists
type TickerValidator struct {
	log zerolog.Logger
}

// NewTickerValidator creates a new ticker validator.
// The logger only receives debug traces; pass zerolog.Nop() to silence it.
func NewTickerValidator(log zerolog.Logger) *TickerValidator {
	return &TickerValidator{
		log: log.With().Str("component", "ticker_validator").Logger(),
	}
}

// Normalize trims and uppercases every ticker, drops empty entries and removes
// duplicates while keeping the first-seen order.
func (v *TickerValidator) Normalize(tickers []string) ([]string, error) {
	if tickers == nil {
		return nil, domain.NewInputError("`tickers` cannot be null.")
	}

	cleaned := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		tt := strings.ToUpper(strings.TrimSpace(t))
		if tt == "" || seen[tt] {
			continue
		}
		seen[tt] = true
		cleaned = append(cleaned, tt)
	}

	v.log.Debug().Strs("tickers", cleaned).Msg("Normalized tickers")
	return cleaned, nil
}

// Validate checks size bounds and the allowed character set (letters, '.', '-').
// Every offending entry is reported.
func (v *TickerValidator) Validate(tickers []string) error {
	if len(tickers) == 0 {
		return domain.NewInputError("Provide at least one ticker.")
	}
	if len(tickers) > MaxTickers {
		return domain.NewInputError("Too many tickers (max %d).", MaxTickers)
	}

	var bad []string
	for _, t := range tickers {
		if !tickerPattern.MatchString(t) {
			bad = append(bad, t)
		}
	}
	if len(bad) > 0 {
		return &domain.InputError{Message: "Invalid ticker symbols", Values: bad}
	}

	v.log.Debug().Int("count", len(tickers)).Msg("Ticker validation OK")
	return nil
}

// Prepare runs Normalize followed by Validate
func (v *TickerValidator) Prepare(tickers []string) ([]string, error) {
	symbols, err := v.Normalize(tickers)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}
