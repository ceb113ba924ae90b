package repository

import (
	"time"

	"cosmossdk.io/math"
)

// Side orients a token within a trading pair.
type Side string

const (
	SideAuto  Side = "auto"
	SideBase  Side = "base"
	SideQuote Side = "quote"
)

// Direction is the kind of pool event a trade row records.
type Direction string

const (
	DirectionBuy      Direction = "buy"
	DirectionSell     Direction = "sell"
	DirectionProvide  Direction = "provide"
	DirectionWithdraw Direction = "withdraw"
)

// Token is a chain asset as recorded by the ingester.
// Base-unit amounts are math.Int; a nil Int means the value is unknown.
type Token struct {
	ID              int64
	Denom           string
	Symbol          string
	Name            string
	Exponent        *int32
	TotalSupplyBase math.Int
	MaxSupplyBase   math.Int
	IsStable        bool
	ImageURL        string
	Website         string
	Telegram        string
	Twitter         string
	CreatedAt       time.Time
}

// Pool identifies a trading pair contract.
type Pool struct {
	ID           int64
	PairContract string
	BaseTokenID  int64
	QuoteTokenID int64
	PairType     string
	IsUzigQuote  bool
	CreatedAt    time.Time
}

// PoolRow is a pool joined with its current state, the latest stored ZIG
// prices of both legs, and 24h TVL. Reserves are nil Ints when the pool has
// no tracked state.
type PoolRow struct {
	Pool             Pool
	ReserveBaseBase  math.Int
	ReserveQuoteBase math.Int
	BaseExponent     *int32
	QuoteExponent    *int32
	QuoteDenom       string
	BasePriceInZig   *float64
	QuotePriceInZig  *float64
	TVLZig           *float64
}

// TradeRow is a trade joined with its pool, the exponents of both legs,
// the last known price of the pool's quote asset in ZIG, and the ZIG/USD
// rate captured at or before the trade.
type TradeRow struct {
	TradeID          int64
	Direction        Direction
	PairContract     string
	PoolID           int64
	IsUzigQuote      bool
	OfferDenom       string
	OfferAmountBase  math.Int
	AskDenom         string
	ReturnAmountBase math.Int
	OfferExponent    *int32
	AskExponent      *int32
	QuoteDenom       string
	QuotePriceInZig  *float64
	RateAtTrade      *float64
	Signer           string
	TxHash           string
	CreatedAt        time.Time
}

// Bar is a stored 1-minute OHLCV bar. Prices are quote units per base unit.
type Bar struct {
	PoolID      int64
	BucketStart time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	TradeCount  int64
}

// BucketStats is one row of the pre-aggregated per-token stats matrix.
type BucketStats struct {
	VolumeBuyZig  float64
	VolumeSellZig float64
	TxBuy         int64
	TxSell        int64
	UniqueTraders int64
	TVLZig        *float64
}

// SupplyInfo carries the supply figures for a token in base units.
type SupplyInfo struct {
	CirculatingBase math.Int
	TotalBase       math.Int
	MaxBase         math.Int
}

// SecurityInfo summarizes on-chain safety facts about a token.
type SecurityInfo struct {
	MintRevoked   bool
	FreezeRevoked bool
	LPBurnedPct   *float64
	Top10Pct      *float64
}

// ExternalStats is a third-party figure set used as a fallback when
// chain-derived numbers are unavailable.
type ExternalStats struct {
	PriceUSD     *float64
	MarketCapUSD *float64
	Volume24hUSD *float64
	UpdatedAt    time.Time
}
