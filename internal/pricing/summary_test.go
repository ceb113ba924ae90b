package pricing

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

func summaryEngine() (*Engine, *stubRepo) {
	repo := newStubRepo()
	repo.tokens = []repository.Token{
		{ID: 1, Denom: "uzig", Symbol: "ZIG", Name: "ZIGChain", Exponent: int32Ptr(6)},
		{ID: 2, Denom: "utoken", Symbol: "TOK", Name: "Some Token", Exponent: int32Ptr(6)},
	}
	repo.basePools[2] = []repository.PoolRow{newNativePoolRow(7, "pair-tok", 2, 10000, 50000, "")}
	repo.rate = floatPtr(2)
	repo.supplies[2] = repository.SupplyInfo{
		CirculatingBase: sdkmath.NewInt(800_000_000),   // 800
		TotalBase:       sdkmath.NewInt(1_000_000_000), // 1000
		MaxBase:         sdkmath.NewInt(2_000_000_000), // 2000
	}
	repo.holders[2] = 42
	now := time.Unix(100_000, 0).UTC()
	return newTestEngine(repo, now), repo
}

func TestTokenSummaryBasePriced(t *testing.T) {
	engine, repo := summaryEngine()
	repo.security[2] = repository.SecurityInfo{MintRevoked: true, LPBurnedPct: floatPtr(90)}
	tvl := 12345.0
	repo.bucketStats["2/1h0m0s"] = repository.BucketStats{
		VolumeBuyZig:  10,
		VolumeSellZig: 5,
		TxBuy:         3,
		TxSell:        2,
		UniqueTraders: 4,
		TVLZig:        &tvl,
	}

	s, err := engine.TokenSummary("tok", SummaryOptions{})
	require.NoError(t, err)

	require.Equal(t, int64(2), s.TokenID)
	require.Equal(t, "utoken", s.Denom)
	require.NotNil(t, s.Price.Native)
	require.InDelta(t, 5, *s.Price.Native, 1e-9)
	require.Equal(t, "pool:pair-tok", s.Price.Source)
	require.NotNil(t, s.Price.USD)
	require.InDelta(t, 10, *s.Price.USD, 1e-9)

	require.NotNil(t, s.CirculatingSupply)
	require.InDelta(t, 800, *s.CirculatingSupply, 1e-9)
	require.NotNil(t, s.MarketCap)
	require.InDelta(t, 8000, *s.MarketCap, 1e-9)
	require.NotNil(t, s.FDV)
	require.InDelta(t, 20000, *s.FDV, 1e-9)

	require.Equal(t, int64(42), s.Holders)
	require.Equal(t, int64(1), s.Pools)
	require.NotNil(t, s.BestPool)
	require.Equal(t, "pair-tok", s.BestPool.PairContract)

	require.Len(t, s.Buckets, 4)
	hour := s.Buckets["1h"]
	require.InDelta(t, 15, hour.VolumeTotal, 1e-9)
	require.Equal(t, int64(5), hour.TxTotal)
	require.NotNil(t, hour.Liquidity)
	require.InDelta(t, tvl, *hour.Liquidity, 1e-9)

	require.NotNil(t, s.Security)
	require.True(t, s.Security.MintRevoked)
}

func TestTokenSummaryChangePercent(t *testing.T) {
	engine, repo := summaryEngine()
	now := time.Unix(100_000, 0).UTC()
	// close one hour ago was 4, latest close is 5: +25%
	repo.bars[7] = []repository.Bar{
		{PoolID: 7, BucketStart: now.Add(-time.Hour), Close: 4},
		{PoolID: 7, BucketStart: now.Add(-31 * time.Minute), Close: 5},
		{PoolID: 7, BucketStart: now.Add(-time.Minute), Close: 5},
	}

	s, err := engine.TokenSummary("tok", SummaryOptions{})
	require.NoError(t, err)

	change := s.Price.Change["1h"]
	require.NotNil(t, change)
	require.InDelta(t, 25, *change, 1e-9)

	// within the 30m window the close has not moved: flat
	change = s.Price.Change["30m"]
	require.NotNil(t, change)
	require.InDelta(t, 0, *change, 1e-9)
}

func TestTokenSummaryPinnedPool(t *testing.T) {
	engine, repo := summaryEngine()
	repo.basePools[2] = append(repo.basePools[2], newNativePoolRow(8, "pair-alt", 2, 1000, 3000, ""))

	s, err := engine.TokenSummary("tok", SummaryOptions{PairContract: "pair-alt"})
	require.NoError(t, err)
	require.NotNil(t, s.BestPool)
	require.Equal(t, "pair-alt", s.BestPool.PairContract)
	require.NotNil(t, s.Price.Native)
	require.InDelta(t, 3, *s.Price.Native, 1e-9)
}

func TestTokenSummaryQuoteSide(t *testing.T) {
	engine, repo := summaryEngine()
	repo.tokens = append(repo.tokens, repository.Token{ID: 3, Denom: "uusdc", Symbol: "USDC", Exponent: int32Ptr(6)})
	row := newNativePoolRow(9, "pair-usdc-quoted", 5, 100, 100, "")
	row.Pool.QuoteTokenID = 3
	row.Pool.IsUzigQuote = false
	row.QuoteDenom = "uusdc"
	row.QuotePriceInZig = floatPtr(4)
	repo.quotePools[3] = []repository.PoolRow{row}

	s, err := engine.TokenSummary("usdc", SummaryOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Price.Native)
	require.InDelta(t, 4, *s.Price.Native, 1e-9)
	require.Equal(t, "pool:pair-usdc-quoted", s.Price.Source)
	require.NotNil(t, s.Price.USD)
	require.InDelta(t, 8, *s.Price.USD, 1e-9)
}

func TestTokenSummaryNativeCurrencyWithStablePool(t *testing.T) {
	engine, repo := summaryEngine()
	stable := newNativePoolRow(11, "pair-stable", 4, 1000, 4000, "")
	stable.BasePriceInZig = floatPtr(4)
	repo.stable = &stable

	s, err := engine.TokenSummary("zig", SummaryOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Price.Native)
	require.InDelta(t, 1, *s.Price.Native, 1e-9)
	require.NotNil(t, s.Price.USD)
	// USD per ZIG is the inverse of the stable asset's ZIG price
	require.InDelta(t, 0.25, *s.Price.USD, 1e-9)
	require.Equal(t, "stable_pool", s.Price.Source)
}

func TestTokenSummaryNativeCurrencyRateFallback(t *testing.T) {
	engine, _ := summaryEngine()

	s, err := engine.TokenSummary("uzig", SummaryOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Price.USD)
	require.InDelta(t, 2, *s.Price.USD, 1e-9)
	require.Equal(t, "exchange_rate", s.Price.Source)
}

func TestTokenSummaryExternalFallback(t *testing.T) {
	engine, repo := summaryEngine()
	repo.rate = nil
	mcap := 5_000_000.0
	repo.external[2] = repository.ExternalStats{
		PriceUSD:     floatPtr(0.02),
		MarketCapUSD: &mcap,
	}

	s, err := engine.TokenSummary("tok", SummaryOptions{})
	require.NoError(t, err)
	// native price still comes from the pool, USD and mcap from the fallback
	require.NotNil(t, s.Price.Native)
	require.NotNil(t, s.Price.USD)
	require.InDelta(t, 0.02, *s.Price.USD, 1e-9)
	require.NotNil(t, s.MarketCap)
	require.InDelta(t, mcap, *s.MarketCap, 1e-9)
}

func TestTokenSummaries(t *testing.T) {
	engine, _ := summaryEngine()

	summaries, err := engine.TokenSummaries(context.Background(), []string{"tok", "missing", "zig"}, SummaryOptions{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, int64(2), summaries[0].TokenID)
	require.Equal(t, int64(1), summaries[1].TokenID)
}

func TestTokenSummaryByIDUnknown(t *testing.T) {
	engine, _ := summaryEngine()

	_, err := engine.TokenSummaryByID(999, SummaryOptions{})
	require.ErrorIs(t, err, ErrTokenNotFound)
}
