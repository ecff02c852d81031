package collector

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when a provider is temporarily disabled after
// repeated failures.
var ErrCircuitOpen = errors.New("provider circuit open")

// APIError is a non-200 response from a data provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", e.Provider, e.Endpoint, e.StatusCode, e.Message)
}

// NotFound reports whether the provider does not know the symbol.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}
