package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when begin is after end.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInsufficientData is returned when a window has too few bars to compute returns.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUndefinedRatio is returned when the Sharpe ratio has zero volatility,
	// including windows with a single daily return.
	ErrUndefinedRatio = errors.New("undefined ratio")
	// ErrDivisionByZero is returned when a prior close is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Describe turns an engine error into a message suitable for end users.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRange):
		return "Invalid date range. The start date must not be after the end date and the end date must not be in the future."
	case errors.Is(err, ErrInsufficientData):
		return "Not enough trading days in the selected window. At least two are required."
	case errors.Is(err, ErrUndefinedRatio):
		return "The Sharpe ratio is undefined because daily returns do not vary. Widen the date range to include more trading days."
	case errors.Is(err, ErrDivisionByZero):
		return "The price series contains a zero close and returns cannot be computed."
	default:
		return fmt.Sprintf("Analysis failed: %v", err)
	}
}
