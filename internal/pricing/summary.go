package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zigchain/dex-analytics/pkg/repository"
	"github.com/zigchain/dex-analytics/pkg/types"
)

// SummaryOptions tune how a token summary is computed.
type SummaryOptions struct {
	// Side forces the dominant side; SideAuto resolves it from pools.
	Side repository.Side
	// View orients change percentages; with a quote-dominant token and a
	// quote view, 1-minute closes are inverted before comparison.
	View repository.Side
	// PairContract pins the pricing pool instead of best-pool selection.
	PairContract string
}

var summaryBuckets = []struct {
	label  string
	window time.Duration
}{
	{"30m", 30 * time.Minute},
	{"1h", time.Hour},
	{"4h", 4 * time.Hour},
	{"24h", 24 * time.Hour},
}

// TokenSummary resolves an identifier and assembles the denormalized summary
// object. ErrTokenNotFound is the only expected error; store failures
// propagate fatally.
func (e *Engine) TokenSummary(identifier string, opts SummaryOptions) (types.TokenSummary, error) {
	token, err := e.ResolveToken(identifier)
	if err != nil {
		return types.TokenSummary{}, err
	}
	return e.summarize(token, opts)
}

// TokenSummaryByID is TokenSummary for an already-known token id.
func (e *Engine) TokenSummaryByID(id int64, opts SummaryOptions) (types.TokenSummary, error) {
	token, found, err := e.repo.TokenByID(id)
	if err != nil {
		return types.TokenSummary{}, fmt.Errorf("token %d: %w", id, err)
	}
	if !found {
		return types.TokenSummary{}, fmt.Errorf("token %d: %w", id, ErrTokenNotFound)
	}
	return e.summarize(token, opts)
}

// TokenSummaries computes summaries for a list of identifiers with a bounded
// concurrency fan-out. Identifiers that do not resolve are skipped.
func (e *Engine) TokenSummaries(ctx context.Context, identifiers []string, opts SummaryOptions) ([]types.TokenSummary, error) {
	results := make([]*types.TokenSummary, len(identifiers))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, identifier := range identifiers {
		i, identifier := i, identifier
		g.Go(func() error {
			summary, err := e.TokenSummary(identifier, opts)
			if errors.Is(err, ErrTokenNotFound) {
				e.logger.Debug("skipping unresolved token", "identifier", identifier)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]types.TokenSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (e *Engine) summarize(token repository.Token, opts SummaryOptions) (types.TokenSummary, error) {
	now := e.now()
	rate := e.liveRate()

	exponent := NativeExponent
	if token.Exponent != nil {
		exponent = *token.Exponent
	}
	s := types.TokenSummary{
		TokenID:   token.ID,
		Denom:     token.Denom,
		Symbol:    token.Symbol,
		Name:      token.Name,
		Exponent:  exponent,
		ImageURL:  token.ImageURL,
		Website:   token.Website,
		Telegram:  token.Telegram,
		Twitter:   token.Twitter,
		CreatedAt: token.CreatedAt.Unix(),
		Buckets:   make(map[string]types.BucketBlock, len(summaryBuckets)),
	}

	// pricePool drives change-percentage computation
	var pricePool *repository.Pool
	invertCloses := false

	var err error
	if IsNativeCurrency(token) {
		pricePool, invertCloses, err = e.priceNativeCurrency(&s, rate)
	} else {
		pricePool, invertCloses, err = e.priceToken(&s, token, opts, rate)
	}
	if err != nil {
		return s, err
	}

	if err := e.fillSupply(&s, token, exponent); err != nil {
		return s, err
	}
	e.fillExternalFallback(&s, token)

	if err := e.fillBuckets(&s, token, pricePool, invertCloses, now); err != nil {
		return s, err
	}

	holders, err := e.repo.HolderCount(token.ID)
	if err != nil {
		return s, fmt.Errorf("holder count for token %d: %w", token.ID, err)
	}
	s.Holders = holders

	poolCount, err := e.repo.PoolCount(token.ID)
	if err != nil {
		return s, fmt.Errorf("pool count for token %d: %w", token.ID, err)
	}
	s.Pools = poolCount

	if sec, found, err := e.repo.Security(token.ID); err != nil {
		return s, fmt.Errorf("security for token %d: %w", token.ID, err)
	} else if found {
		s.Security = &types.SecurityBlock{
			MintRevoked:   sec.MintRevoked,
			FreezeRevoked: sec.FreezeRevoked,
			LPBurnedPct:   sec.LPBurnedPct,
			Top10Pct:      sec.Top10Pct,
		}
	}

	return s, nil
}

// priceNativeCurrency prices ZIG: pegged to 1 in its own unit, with USD
// derived by inverting the stable pool's ZIG price of the stable asset, or
// falling back to the live exchange rate.
func (e *Engine) priceNativeCurrency(s *types.TokenSummary, rate *float64) (*repository.Pool, bool, error) {
	s.Price.Native = floatPtr(1)
	s.Price.Source = "peg"

	var pricePool *repository.Pool
	invertCloses := false

	stable, found, err := e.repo.StablePool()
	if err != nil {
		return nil, false, fmt.Errorf("stable pool: %w", err)
	}
	if found {
		// the stable pool prices the stable asset in ZIG, so USD per ZIG is
		// its inverse; its candle closes invert the same way
		if stable.BasePriceInZig != nil && *stable.BasePriceInZig > 0 {
			s.Price.USD = floatPtr(1 / *stable.BasePriceInZig)
			s.Price.Source = "stable_pool"
		}
		pool := stable.Pool
		pricePool = &pool
		invertCloses = true
	}
	if s.Price.USD == nil && rate != nil {
		s.Price.USD = rate
		s.Price.Source = "exchange_rate"
	}
	return pricePool, invertCloses, nil
}

// priceToken prices a non-native token through its dominant side, selecting
// the best pool by simulated sell output unless a pool override is given.
func (e *Engine) priceToken(s *types.TokenSummary, token repository.Token, opts SummaryOptions, rate *float64) (*repository.Pool, bool, error) {
	side, err := e.DominantSide(token.ID, opts.Side)
	if err != nil {
		return nil, false, err
	}

	var pricePool *repository.Pool

	if side == repository.SideBase {
		var pools []PoolQuote
		if opts.PairContract != "" {
			row, found, err := e.repo.PoolByContract(opts.PairContract)
			if err != nil {
				return nil, false, fmt.Errorf("pool %q: %w", opts.PairContract, err)
			}
			if found {
				pools = []PoolQuote{poolQuoteFromRow(row)}
			}
		}
		if pools == nil {
			pools, err = e.NativeQuotedPools(token)
			if err != nil {
				return nil, false, err
			}
		}
		if len(pools) > 0 {
			rateV := 0.0
			if rate != nil {
				rateV = *rate
			}
			amount := DefaultTradeSize(false, rateV, pools)
			idx, _ := PickBestPool(pools, false, amount)
			best := pools[idx]
			s.BestPool = &types.BestPool{
				PoolID:        best.Pool.ID,
				PairContract:  best.Pool.PairContract,
				PairType:      best.Pool.PairType,
				ReserveNative: best.ReserveNative,
				ReserveToken:  best.ReserveToken,
				MidPrice:      best.MidPrice,
				TVL:           best.TVL,
				Fee:           best.Fee,
			}
			if best.MidPrice > 0 {
				s.Price.Native = floatPtr(best.MidPrice)
				s.Price.Source = "pool:" + best.Pool.PairContract
			}
			pool := best.Pool
			pricePool = &pool
		}
	} else {
		rows, err := e.repo.ListPools(token.ID, repository.SideQuote)
		if err != nil {
			return nil, false, fmt.Errorf("list quote pools for token %d: %w", token.ID, err)
		}
		if len(rows) > 0 {
			row := rows[0]
			if row.QuotePriceInZig != nil && *row.QuotePriceInZig > 0 {
				s.Price.Native = row.QuotePriceInZig
				s.Price.Source = "pool:" + row.Pool.PairContract
			}
			pool := row.Pool
			pricePool = &pool
		}
	}

	if rate != nil {
		s.Price.USD = ToUSD(s.Price.Native, *rate)
	}
	invertCloses := side == repository.SideQuote && opts.View == repository.SideQuote
	return pricePool, invertCloses, nil
}

func (e *Engine) fillSupply(s *types.TokenSummary, token repository.Token, exponent int32) error {
	exp := exponent
	circulating := token.TotalSupplyBase
	total := token.TotalSupplyBase
	max := token.MaxSupplyBase

	if supply, found, err := e.repo.Supply(token.ID); err != nil {
		return fmt.Errorf("supply for token %d: %w", token.ID, err)
	} else if found {
		circulating = supply.CirculatingBase
		if !supply.TotalBase.IsNil() {
			total = supply.TotalBase
		}
		if !supply.MaxBase.IsNil() {
			max = supply.MaxBase
		}
	}

	s.CirculatingSupply = Scale(circulating, &exp)
	s.TotalSupply = Scale(total, &exp)
	s.MaxSupply = Scale(max, &exp)

	if s.Price.USD != nil {
		s.MarketCap = mulPtr(s.CirculatingSupply, *s.Price.USD)
		fdvSupply := s.MaxSupply
		if fdvSupply == nil {
			fdvSupply = s.TotalSupply
		}
		s.FDV = mulPtr(fdvSupply, *s.Price.USD)
	}
	return nil
}

// fillExternalFallback substitutes third-party figures for fields the chain
// data could not produce.
func (e *Engine) fillExternalFallback(s *types.TokenSummary, token repository.Token) {
	if s.Price.USD != nil && s.MarketCap != nil {
		return
	}
	ext, found, err := e.repo.ExternalStats(token.ID)
	if err != nil {
		e.logger.Error("external stats read failed", "token_id", token.ID, "err", err)
		return
	}
	if !found {
		return
	}
	if s.Price.USD == nil && ext.PriceUSD != nil {
		s.Price.USD = ext.PriceUSD
		if s.Price.Source == "" {
			s.Price.Source = "external"
		}
	}
	if s.MarketCap == nil {
		s.MarketCap = ext.MarketCapUSD
	}
}

// fillBuckets reads the pre-aggregated stats matrix and computes the change
// percentage per bucket, fanning out with the engine's concurrency cap.
func (e *Engine) fillBuckets(s *types.TokenSummary, token repository.Token, pricePool *repository.Pool, invertCloses bool, now time.Time) error {
	type bucketResult struct {
		block  types.BucketBlock
		change *float64
	}
	results := make([]bucketResult, len(summaryBuckets))

	g := new(errgroup.Group)
	g.SetLimit(e.maxParallel)
	for i, b := range summaryBuckets {
		i, b := i, b
		g.Go(func() error {
			stats, err := e.repo.TokenBucketStats(token.ID, b.window)
			if err != nil {
				return fmt.Errorf("bucket stats %s for token %d: %w", b.label, token.ID, err)
			}
			res := bucketResult{block: types.BucketBlock{
				VolumeBuy:     stats.VolumeBuyZig,
				VolumeSell:    stats.VolumeSellZig,
				VolumeTotal:   stats.VolumeBuyZig + stats.VolumeSellZig,
				TxBuy:         stats.TxBuy,
				TxSell:        stats.TxSell,
				TxTotal:       stats.TxBuy + stats.TxSell,
				UniqueTraders: stats.UniqueTraders,
				Liquidity:     stats.TVLZig,
			}}
			if pricePool != nil {
				change, err := e.changePercent(pricePool.ID, b.window, invertCloses, now)
				if err != nil {
					return err
				}
				res.change = change
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.Price.Change = make(map[string]*float64, len(summaryBuckets))
	for i, b := range summaryBuckets {
		s.Buckets[b.label] = results[i].block
		s.Price.Change[b.label] = results[i].change
	}
	return nil
}

// changePercent compares the latest 1-minute close with the closest close at
// or before now minus the window.
func (e *Engine) changePercent(poolID int64, window time.Duration, invert bool, now time.Time) (*float64, error) {
	latest, found, err := e.repo.LastBarBefore(poolID, now)
	if err != nil {
		return nil, fmt.Errorf("latest bar for pool %d: %w", poolID, err)
	}
	if !found {
		return nil, nil
	}
	// LastBarBefore is strictly-before, so nudge past the boundary to make
	// the comparison at-or-before.
	past, found, err := e.repo.LastBarBefore(poolID, now.Add(-window).Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("past bar for pool %d: %w", poolID, err)
	}
	if !found {
		return nil, nil
	}

	latestClose, pastClose := latest.Close, past.Close
	if invert {
		latestClose = invertValue(latestClose)
		pastClose = invertValue(pastClose)
	}
	if latestClose <= 0 || pastClose <= 0 {
		return nil, nil
	}
	return floatPtr((latestClose/pastClose - 1) * 100), nil
}
