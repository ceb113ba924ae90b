// Package pricing implements the valuation and route-selection core: unit
// scaling, pool resolution, constant-product swap simulation, trade shaping,
// OHLCV aggregation and token summary assembly. All state lives in the
// externally owned store; every operation here is safe for concurrent use.
package pricing

import (
	"errors"
	"log/slog"
	"time"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

const (
	// NativeDenom and NativeSymbol are the two recognized aliases of the
	// chain's native currency.
	NativeDenom  = "uzig"
	NativeSymbol = "zig"

	// NativeExponent is the native currency's base-unit exponent.
	NativeExponent int32 = 6

	// DefaultMaxParallel caps concurrent store reads during list fan-out.
	DefaultMaxParallel = 8
)

// ErrTokenNotFound reports that an identifier did not resolve to a token.
// It is an expected outcome of user-supplied identifiers, not a store failure.
var ErrTokenNotFound = errors.New("token not found")

// Engine computes prices, routes, shaped trades, candles and summaries from
// the read-only repository.
type Engine struct {
	repo        repository.Repository
	logger      *slog.Logger
	now         func() time.Time
	maxParallel int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMaxParallel sets the concurrency cap for list fan-out reads.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

// New creates an Engine over the given repository.
func New(repo repository.Repository, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:        repo,
		logger:      logger,
		now:         time.Now,
		maxParallel: DefaultMaxParallel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// liveRate returns the latest ZIG/USD rate, or nil when unavailable.
func (e *Engine) liveRate() *float64 {
	rate, found, err := e.repo.LatestExchangeRate()
	if err != nil {
		e.logger.Error("exchange rate read failed", "err", err)
		return nil
	}
	if !found {
		return nil
	}
	return &rate
}
