package collector

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// BreakerFetcher trips after consecutive provider failures and fails fast
// until the cool-down elapses.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next with a circuit breaker that opens after
// failures consecutive errors and probes again after cooldown.
func NewBreakerFetcher(next Fetcher, failures uint32, cooldown time.Duration) *BreakerFetcher {
	st := gobreaker.Settings{
		Name:    next.Name(),
		Timeout: cooldown,
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= failures
	}
	st.IsSuccessful = func(err error) bool {
		// client-side errors say nothing about provider health
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return true
		}
		return err == nil || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	}
	return &BreakerFetcher{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerFetcher) Name() string { return b.next.Name() }

func (b *BreakerFetcher) FetchDailyBars(ctx context.Context, symbol string, begin, end time.Time) ([]model.RawBar, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchDailyBars(ctx, symbol, begin, end)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]model.RawBar), nil
}

// State reports the current breaker state.
func (b *BreakerFetcher) State() string {
	return b.cb.State().String()
}
