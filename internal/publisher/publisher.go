// Package publisher republishes token summaries over NATS whenever the
// indexer marks a token dirty, throttled to a minimum interval per token.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/zigchain/dex-analytics/internal/pricing"
	"github.com/zigchain/dex-analytics/pkg/types"
)

// NatsConn is the slice of *nats.Conn the publisher uses.
type NatsConn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// SummarySource produces the summary payload for a token id.
type SummarySource interface {
	TokenSummaryByID(id int64, opts pricing.SummaryOptions) (types.TokenSummary, error)
}

// SummaryCache receives every published summary; nil disables caching.
type SummaryCache interface {
	Set(ctx context.Context, summary types.TokenSummary) error
}

type Publisher struct {
	logger  *slog.Logger
	conn    NatsConn
	source  SummarySource
	cache   SummaryCache
	limiter *Limiter
	prefix  string
	now     func() time.Time

	published  prometheus.Counter
	suppressed prometheus.Counter
	errCounter prometheus.Counter
}

type Option func(*Publisher)

func WithCache(cache SummaryCache) Option {
	return func(p *Publisher) {
		p.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func New(conn NatsConn, source SummarySource, logger *slog.Logger, prefix string, minInterval time.Duration, registerer prometheus.Registerer, opts ...Option) *Publisher {
	p := &Publisher{
		logger:  logger,
		conn:    conn,
		source:  source,
		limiter: NewLimiter(minInterval),
		prefix:  strings.TrimSuffix(prefix, "."),
		now:     time.Now,
		published: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "summary_published_total",
			Help: "Number of token summaries published.",
		}),
		suppressed: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "summary_suppressed_total",
			Help: "Number of dirty notifications dropped by the per-token rate limit.",
		}),
		errCounter: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "summary_errors_total",
			Help: "Number of dirty notifications that failed to produce a summary.",
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) dirtySubject() string {
	return p.prefix + ".token.dirty"
}

func (p *Publisher) summarySubject(tokenID int64) string {
	return fmt.Sprintf("%s.summary.%d", p.prefix, tokenID)
}

// Start subscribes to dirty notifications and blocks until the context is
// canceled.
func (p *Publisher) Start(ctx context.Context) error {
	sub, err := p.conn.Subscribe(p.dirtySubject(), func(msg *nats.Msg) {
		p.handleDirty(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", p.dirtySubject(), err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Error("unsubscribe failed", "subject", p.dirtySubject(), "err", err)
		}
		return ctx.Err()
	})
	return g.Wait()
}

func (p *Publisher) handleDirty(ctx context.Context, payload []byte) {
	tokenID, err := strconv.ParseInt(strings.TrimSpace(string(payload)), 10, 64)
	if err != nil {
		p.errCounter.Inc()
		p.logger.Warn("bad dirty notification", "payload", string(payload), "err", err)
		return
	}
	if !p.limiter.Allow(tokenID, p.now()) {
		p.suppressed.Inc()
		return
	}
	if err := p.PublishSummary(ctx, tokenID); err != nil {
		p.errCounter.Inc()
		p.logger.Error("publish summary failed", "token_id", tokenID, "err", err)
	}
}

// PublishSummary builds and publishes the summary for one token, bypassing
// the rate limit. An unresolvable token id publishes an error-shaped result
// instead of a summary.
func (p *Publisher) PublishSummary(ctx context.Context, tokenID int64) error {
	summary, err := p.source.TokenSummaryByID(tokenID, pricing.SummaryOptions{})
	if errors.Is(err, pricing.ErrTokenNotFound) {
		return p.publishError(tokenID, err)
	}
	if err != nil {
		return fmt.Errorf("summary for token %d: %w", tokenID, err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary %d: %w", tokenID, err)
	}
	envelope, err := json.Marshal(types.Envelope{
		Type:    "token.summary",
		Ts:      p.now().Unix(),
		TokenID: tokenID,
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope %d: %w", tokenID, err)
	}

	if err := p.conn.Publish(p.summarySubject(tokenID), envelope); err != nil {
		return fmt.Errorf("publish %s: %w", p.summarySubject(tokenID), err)
	}
	p.published.Inc()

	if p.cache != nil {
		if err := p.cache.Set(ctx, summary); err != nil {
			p.logger.Warn("cache summary failed", "token_id", tokenID, "err", err)
		}
	}
	return nil
}

func (p *Publisher) publishError(tokenID int64, cause error) error {
	data, err := json.Marshal(types.NewErrorResult(cause.Error()))
	if err != nil {
		return fmt.Errorf("marshal error result %d: %w", tokenID, err)
	}
	envelope, err := json.Marshal(types.Envelope{
		Type:    "error",
		Ts:      p.now().Unix(),
		TokenID: tokenID,
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope %d: %w", tokenID, err)
	}
	if err := p.conn.Publish(p.summarySubject(tokenID), envelope); err != nil {
		return fmt.Errorf("publish %s: %w", p.summarySubject(tokenID), err)
	}
	p.published.Inc()
	return nil
}
