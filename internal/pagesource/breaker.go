package pagesource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dshills/wikipath-mcp/pkg/types"
)

// BreakerConfig configures the circuit breaker around a remote source
type BreakerConfig struct {
	MaxRequests uint32        // Requests allowed through while half-open
	Interval    time.Duration // Cyclic period for clearing counts while closed
	Timeout     time.Duration // Open period before moving to half-open
	TripRatio   float64       // Failure ratio that opens the breaker
}

// minRequestsToTrip avoids opening on the first unlucky request
const minRequestsToTrip = 3

// DefaultBreakerConfig returns the defaults used by the CLI and server
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		TripRatio:   0.6,
	}
}

// Breaker stops calling a failing upstream for a while so a crawl sheds
// branches quickly instead of waiting on timeouts.
type Breaker struct {
	inner Source
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker wraps inner with a circuit breaker named name
func NewBreaker(inner Source, name string, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TripRatio <= 0 {
		cfg.TripRatio = DefaultBreakerConfig().TripRatio
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequestsToTrip && failureRatio >= cfg.TripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// A missing page or a cancelled search says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, types.ErrPageNotFound) ||
				errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(st),
	}
}

// State returns the current breaker state name
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// PageExists implements Source
func (b *Breaker) PageExists(ctx context.Context, title string) (bool, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.PageExists(ctx, title)
	})
	if err != nil {
		return false, b.wrap(err)
	}
	return v.(bool), nil
}

// Outlinks implements Source
func (b *Breaker) Outlinks(ctx context.Context, title string) ([]string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Outlinks(ctx, title)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return v.([]string), nil
}

// Text implements Source
func (b *Breaker) Text(ctx context.Context, title string) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Text(ctx, title)
	})
	if err != nil {
		return "", b.wrap(err)
	}
	return v.(string), nil
}

// WordRarity bypasses the breaker; rarity comes from local data
func (b *Breaker) WordRarity(ctx context.Context, word string) (float64, error) {
	return b.inner.WordRarity(ctx, word)
}

// wrap turns breaker rejections into fetch failures so callers drop the branch
func (b *Breaker) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", types.ErrPageFetch, err)
	}
	return err
}
