package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientData is returned when prices yield no usable return rows
var ErrInsufficientData = errors.New("insufficient price history: no usable return rows")

// ErrNoQuoteData is returned by providers when a ticker has no recent candles
var ErrNoQuoteData = errors.New("no recent price data")

// InputError is a caller-correctable request problem.
// Values lists the offending inputs, if any.
type InputError struct {
	Message string
	Values  []string
}

// NewInputError creates an input error without offending values
func NewInputError(format string, args ...interface{}) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	if len(e.Values) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Values, ", ")
}

// DataUnavailableError is returned when no requested ticker produced usable prices
type DataUnavailableError struct {
	Failed []string
}

func (e *DataUnavailableError) Error() string {
	failed := "(unknown)"
	if len(e.Failed) > 0 {
		failed = strings.Join(e.Failed, ", ")
	}
	return "no price data fetched; failed tickers: " + failed
}

// IsInputError reports whether err carries an InputError
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

// IsDataUnavailable reports whether err carries a DataUnavailableError
func IsDataUnavailable(err error) bool {
	var dataErr *DataUnavailableError
	return errors.As(err, &dataErr)
}
