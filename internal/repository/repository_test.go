package repository

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zigchain/dex-analytics/internal/repository/sqlite"
	prepo "github.com/zigchain/dex-analytics/pkg/repository"
)

func makeRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sqlite.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	repo, err := New(db, slog.Default())
	require.NoError(t, err)
	return repo
}

func floatPtr(v float64) *float64 {
	return &v
}

func int32Ptr(v int32) *int32 {
	return &v
}

// seedTokens inserts the native currency, a plain token and a stable token,
// receiving ids 1, 2 and 3.
func seedTokens(t *testing.T, repo *Repository) {
	t.Helper()
	require.NoError(t, repo.SaveToken(Token{Denom: "uzig", Symbol: "ZIG", Name: "ZIGChain", Exponent: int32Ptr(6)}))
	require.NoError(t, repo.SaveToken(Token{Denom: "utoken", Symbol: "TOK", Name: "Some Token", Exponent: int32Ptr(6), TotalSupplyBase: "1000000000"}))
	require.NoError(t, repo.SaveToken(Token{Denom: "uusdc", Symbol: "USDC", Name: "USD Coin", Exponent: int32Ptr(6), IsStable: true}))
}

func TestResolveToken(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	require.NoError(t, repo.SaveToken(Token{Denom: "shark", Symbol: "X4", Name: "Denom Collides"}))
	require.NoError(t, repo.SaveToken(Token{Denom: "ufive", Symbol: "shark", Name: "Symbol Collides"}))
	require.NoError(t, repo.SaveToken(Token{Denom: "usix", Symbol: "DUP", Name: "First Dup"}))
	require.NoError(t, repo.SaveToken(Token{Denom: "useven", Symbol: "DUP", Name: "Second Dup"}))

	tests := []struct {
		name       string
		identifier string
		wantID     int64
		wantFound  bool
	}{
		{"denom exact", "uzig", 1, true},
		{"denom case-insensitive", "UZIG", 1, true},
		{"symbol case-insensitive", "zig", 1, true},
		{"denom beats symbol", "shark", 4, true},
		{"symbol tie highest id", "dup", 7, true},
		{"name substring", "some tok", 2, true},
		{"numeric id", "3", 3, true},
		{"missing", "nope", 0, false},
		{"blank", "  ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, found, err := repo.ResolveToken(tt.identifier)
			require.NoError(t, err)
			require.Equal(t, tt.wantFound, found)
			if found {
				require.Equal(t, tt.wantID, token.ID)
			}
		})
	}
}

func TestTokenByID(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)

	token, found, err := repo.TokenByID(2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "utoken", token.Denom)
	require.False(t, token.TotalSupplyBase.IsNil())
	require.Equal(t, "1000000000", token.TotalSupplyBase.String())
	// unset supply reads back as the nil Int
	require.True(t, token.MaxSupplyBase.IsNil())

	_, found, err = repo.TokenByID(99)
	require.NoError(t, err)
	require.False(t, found)
}

func seedPools(t *testing.T, repo *Repository) {
	t.Helper()
	// pool 1: TOK/ZIG, pool 2: TOK/USDC, pool 3: USDC/ZIG (stable)
	require.NoError(t, repo.SavePool(Pool{PairContract: "pair-tok", BaseTokenID: 2, QuoteTokenID: 1, PairType: "xyk_30", IsUzigQuote: true}))
	require.NoError(t, repo.SavePool(Pool{PairContract: "pair-tok-usdc", BaseTokenID: 2, QuoteTokenID: 3}))
	require.NoError(t, repo.SavePool(Pool{PairContract: "pair-stable", BaseTokenID: 3, QuoteTokenID: 1, IsUzigQuote: true}))

	require.NoError(t, repo.SavePoolState(PoolState{PoolID: 1, ReserveBaseBase: "10000000000", ReserveQuoteBase: "50000000000"}))
	require.NoError(t, repo.SavePoolStat(PoolStat{PoolID: 1, TVLZig: floatPtr(100000)}))

	require.NoError(t, repo.SavePrice(Price{TokenID: 2, PoolID: 1, UpdatedAt: 100, PriceInZig: 5}))
	require.NoError(t, repo.SavePrice(Price{TokenID: 2, PoolID: 1, UpdatedAt: 200, PriceInZig: 5.5}))
	require.NoError(t, repo.SavePrice(Price{TokenID: 3, PoolID: 2, UpdatedAt: 150, PriceInZig: 4}))
	require.NoError(t, repo.SavePrice(Price{TokenID: 3, PoolID: 3, UpdatedAt: 150, PriceInZig: 4}))
}

func TestListPools(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)

	// base side only returns native-quoted pools
	rows, err := repo.ListPools(2, prepo.SideBase)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, "pair-tok", row.Pool.PairContract)
	require.Equal(t, "uzig", row.QuoteDenom)
	require.Equal(t, "10000000000", row.ReserveBaseBase.String())
	require.Equal(t, "50000000000", row.ReserveQuoteBase.String())
	require.NotNil(t, row.BasePriceInZig)
	// the newest stored price wins
	require.InDelta(t, 5.5, *row.BasePriceInZig, 1e-9)
	require.NotNil(t, row.TVLZig)
	require.InDelta(t, 100000, *row.TVLZig, 1e-9)

	// quote side returns pools regardless of the native flag
	rows, err = repo.ListPools(3, prepo.SideQuote)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "pair-tok-usdc", rows[0].Pool.PairContract)
	require.NotNil(t, rows[0].QuotePriceInZig)
	require.InDelta(t, 4, *rows[0].QuotePriceInZig, 1e-9)
	// no tracked state: reserves are unknown
	require.True(t, rows[0].ReserveBaseBase.IsNil())
}

func TestPoolByContract(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)

	row, found, err := repo.PoolByContract("pair-tok")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), row.Pool.ID)

	_, found, err = repo.PoolByContract("pair-nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStablePool(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)

	row, found, err := repo.StablePool()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "pair-stable", row.Pool.PairContract)
	require.NotNil(t, row.BasePriceInZig)
	require.InDelta(t, 4, *row.BasePriceInZig, 1e-9)
}

func TestPoolCount(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)

	count, err := repo.PoolCount(2)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = repo.PoolCount(1)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestBars(t *testing.T) {
	repo := makeRepository(t)
	for i := int64(0); i < 5; i++ {
		require.NoError(t, repo.SaveBar(Bar1m{PoolID: 1, BucketStart: i * 60, Close: float64(i + 1)}))
	}

	bars, err := repo.Bars1m(1, time.Unix(60, 0), time.Unix(240, 0))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, time.Unix(60, 0).UTC(), bars[0].BucketStart)
	require.Equal(t, time.Unix(180, 0).UTC(), bars[2].BucketStart)

	// strictly before: a bar at the exact timestamp is excluded
	bar, found, err := repo.LastBarBefore(1, time.Unix(120, 0))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, time.Unix(60, 0).UTC(), bar.BucketStart)

	_, found, err = repo.LastBarBefore(1, time.Unix(0, 0))
	require.NoError(t, err)
	require.False(t, found)
}

func TestExchangeRates(t *testing.T) {
	repo := makeRepository(t)
	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 100, ZigUSD: 1.5}))
	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 200, ZigUSD: 2}))

	rate, found, err := repo.LatestExchangeRate()
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, 2, rate, 1e-9)

	rate, found, err = repo.ExchangeRateAtOrBefore(time.Unix(150, 0))
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, 1.5, rate, 1e-9)

	rate, found, err = repo.ExchangeRateAtOrBefore(time.Unix(100, 0))
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, 1.5, rate, 1e-9)

	_, found, err = repo.ExchangeRateAtOrBefore(time.Unix(99, 0))
	require.NoError(t, err)
	require.False(t, found)
}

func TestTokenBucketStats(t *testing.T) {
	repo := makeRepository(t)
	require.NoError(t, repo.SaveTokenBucketStat(TokenBucketStat{
		TokenID:       2,
		BucketMinutes: 60,
		VolumeBuyZig:  10,
		VolumeSellZig: 5,
		TxBuy:         3,
		TxSell:        2,
		UniqueTraders: 4,
		TVLZig:        floatPtr(100),
	}))

	stats, err := repo.TokenBucketStats(2, time.Hour)
	require.NoError(t, err)
	require.InDelta(t, 10, stats.VolumeBuyZig, 1e-9)
	require.Equal(t, int64(4), stats.UniqueTraders)
	require.NotNil(t, stats.TVLZig)

	// an absent cell is an all-zero bucket, not an error
	stats, err = repo.TokenBucketStats(2, 30*time.Minute)
	require.NoError(t, err)
	require.Zero(t, stats.VolumeBuyZig)
	require.Nil(t, stats.TVLZig)
}

func TestTokenFacts(t *testing.T) {
	repo := makeRepository(t)

	require.NoError(t, repo.SaveTokenSupply(TokenSupply{TokenID: 2, CirculatingBase: "800000000", TotalBase: "1000000000"}))
	supply, found, err := repo.Supply(2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "800000000", supply.CirculatingBase.String())
	require.True(t, supply.MaxBase.IsNil())

	_, found, err = repo.Supply(3)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.SaveTokenHolders(TokenHolders{TokenID: 2, Holders: 42}))
	holders, err := repo.HolderCount(2)
	require.NoError(t, err)
	require.Equal(t, int64(42), holders)

	require.NoError(t, repo.SaveTokenSecurity(TokenSecurity{TokenID: 2, MintRevoked: true, LPBurnedPct: floatPtr(90)}))
	security, found, err := repo.Security(2)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, security.MintRevoked)
	require.NotNil(t, security.LPBurnedPct)

	require.NoError(t, repo.SaveTokenExternalStat(TokenExternalStat{TokenID: 2, PriceUSD: floatPtr(0.02)}))
	external, found, err := repo.ExternalStats(2)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, external.PriceUSD)
}

func seedTrades(t *testing.T, repo *Repository) {
	t.Helper()
	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 100, ZigUSD: 1.5}))
	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 300, ZigUSD: 2}))

	require.NoError(t, repo.SaveTrade(Trade{
		ExecutedAt:       100,
		Direction:        "buy",
		PairContract:     "pair-tok",
		PoolID:           1,
		OfferDenom:       "uzig",
		OfferAmountBase:  "500000000",
		AskDenom:         "utoken",
		ReturnAmountBase: "1000000000",
		ValueZig:         floatPtr(500),
		Signer:           "zig1alice",
		TxHash:           "AAA",
	}))
	require.NoError(t, repo.SaveTrade(Trade{
		ExecutedAt:       200,
		Direction:        "sell",
		PairContract:     "pair-tok",
		PoolID:           1,
		OfferDenom:       "utoken",
		OfferAmountBase:  "20000000000",
		AskDenom:         "uzig",
		ReturnAmountBase: "9000000000",
		ValueZig:         floatPtr(9000),
		Signer:           "zig1bob",
		TxHash:           "BBB",
	}))
	require.NoError(t, repo.SaveTrade(Trade{
		ExecutedAt:       300,
		Direction:        "buy",
		PairContract:     "pair-tok-usdc",
		PoolID:           2,
		OfferDenom:       "uusdc",
		OfferAmountBase:  "100000000",
		AskDenom:         "utoken",
		ReturnAmountBase: "50000000",
		ValueZig:         floatPtr(400),
		Signer:           "zig1alice",
		TxHash:           "CCC",
	}))
}

func TestTrades(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)
	seedTrades(t, repo)

	rows, err := repo.Trades(prepo.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// newest first
	require.Equal(t, "CCC", rows[0].TxHash)
	require.Equal(t, "AAA", rows[2].TxHash)

	// the joined rate is the one at or before execution
	require.NotNil(t, rows[2].RateAtTrade)
	require.InDelta(t, 1.5, *rows[2].RateAtTrade, 1e-9)
	require.NotNil(t, rows[0].RateAtTrade)
	require.InDelta(t, 2, *rows[0].RateAtTrade, 1e-9)

	// joined pool facts and leg exponents
	require.True(t, rows[2].IsUzigQuote)
	require.Equal(t, "uzig", rows[2].QuoteDenom)
	require.Equal(t, "uusdc", rows[0].QuoteDenom)
	require.NotNil(t, rows[0].QuotePriceInZig)
	require.InDelta(t, 4, *rows[0].QuotePriceInZig, 1e-9)
	require.NotNil(t, rows[0].OfferExponent)
	require.Equal(t, int32(6), *rows[0].OfferExponent)
}

func TestTradesPredicates(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)
	seedPools(t, repo)
	seedTrades(t, repo)

	tests := []struct {
		name       string
		filter     prepo.TradeFilter
		wantHashes []string
	}{
		{
			"direction",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.DirectionIs("sell")}},
			[]string{"BBB"},
		},
		{
			"signer",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.SignerIs("zig1alice")}},
			[]string{"CCC", "AAA"},
		},
		{
			"pair contract",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.PairContractIs("pair-tok-usdc")}},
			[]string{"CCC"},
		},
		{
			"token on either side",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.TokenIs(3)}},
			[]string{"CCC"},
		},
		{
			"min value",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.MinValueZig(1000)}},
			[]string{"BBB"},
		},
		{
			"max value",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.MaxValueZig(500)}},
			[]string{"CCC", "AAA"},
		},
		{
			"since",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{prepo.Since(time.Unix(200, 0))}},
			[]string{"CCC", "BBB"},
		},
		{
			"combined",
			prepo.TradeFilter{Predicates: []prepo.TradePredicate{
				prepo.SignerIs("zig1alice"),
				prepo.Since(time.Unix(200, 0)),
			}},
			[]string{"CCC"},
		},
		{
			"limit and offset",
			prepo.TradeFilter{Limit: 1, Offset: 1},
			[]string{"BBB"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.Trades(tt.filter)
			require.NoError(t, err)
			hashes := make([]string, len(rows))
			for i, row := range rows {
				hashes[i] = row.TxHash
			}
			require.Equal(t, tt.wantHashes, hashes)
		})
	}
}

func TestUpsertsAreIdempotent(t *testing.T) {
	repo := makeRepository(t)
	seedTokens(t, repo)

	require.NoError(t, repo.SaveToken(Token{Denom: "utoken", Symbol: "TOK2", Name: "Renamed"}))
	token, found, err := repo.ResolveToken("utoken")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(2), token.ID)
	require.Equal(t, "TOK2", token.Symbol)

	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 100, ZigUSD: 1}))
	require.NoError(t, repo.SaveExchangeRate(ExchangeRate{Ts: 100, ZigUSD: 1.25}))
	rate, found, err := repo.LatestExchangeRate()
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, 1.25, rate, 1e-9)
}
