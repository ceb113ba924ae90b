package repository

import (
	"time"
)

// Big integer base-unit amounts are stored as decimal strings; an empty
// string means unknown. Row timestamps used in correlated lookups are unix
// seconds so range comparisons stay portable across postgres and sqlite.

type Token struct {
	TokenID         int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Denom           string `gorm:"index:idx_tokens_denom,unique"`
	Symbol          string `gorm:"index"`
	Name            string
	Exponent        *int32
	TotalSupplyBase string
	MaxSupplyBase   string
	IsStable        bool
	ImageURL        string
	Website         string
	Telegram        string
	Twitter         string
}

type Pool struct {
	PoolID       int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PairContract string `gorm:"index:idx_pools_pair,unique"`
	BaseTokenID  int64  `gorm:"index"`
	QuoteTokenID int64  `gorm:"index"`
	PairType     string
	IsUzigQuote  bool
}

type PoolState struct {
	PoolID           int64 `gorm:"primaryKey"`
	UpdatedAt        time.Time
	ReserveBaseBase  string
	ReserveQuoteBase string
}

// PoolStat is the pre-aggregated 24h TVL matrix row for a pool.
type PoolStat struct {
	PoolID    int64 `gorm:"primaryKey"`
	UpdatedAt time.Time
	TVLZig    *float64
}

type Price struct {
	CreatedAt  time.Time
	TokenID    int64 `gorm:"index:idx_prices,unique"`
	PoolID     int64 `gorm:"index:idx_prices,unique"`
	UpdatedAt  int64 `gorm:"index:idx_prices,unique"`
	PriceInZig float64
}

type Trade struct {
	TradeID          int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt        time.Time
	ExecutedAt       int64  `gorm:"index"`
	Direction        string `gorm:"index"`
	PairContract     string `gorm:"index"`
	PoolID           int64  `gorm:"index"`
	OfferDenom       string
	OfferAmountBase  string
	AskDenom         string
	ReturnAmountBase string
	ValueZig         *float64
	Signer           string `gorm:"index"`
	TxHash           string
}

type Bar1m struct {
	PoolID      int64 `gorm:"index:idx_bars_1m,unique"`
	BucketStart int64 `gorm:"index:idx_bars_1m,unique"`
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	TradeCount  int64
}

func (Bar1m) TableName() string {
	return "bars_1m"
}

type ExchangeRate struct {
	Ts     int64 `gorm:"index:idx_exchange_rates_ts,unique"`
	ZigUSD float64
}

// TokenBucketStat is one cell of the pre-aggregated per-token stats matrix.
type TokenBucketStat struct {
	TokenID       int64 `gorm:"index:idx_token_bucket,unique"`
	BucketMinutes int64 `gorm:"index:idx_token_bucket,unique"`
	UpdatedAt     time.Time
	VolumeBuyZig  float64
	VolumeSellZig float64
	TxBuy         int64
	TxSell        int64
	UniqueTraders int64
	TVLZig        *float64
}

type TokenSupply struct {
	TokenID         int64 `gorm:"primaryKey"`
	UpdatedAt       time.Time
	CirculatingBase string
	TotalBase       string
	MaxBase         string
}

type TokenHolders struct {
	TokenID   int64 `gorm:"primaryKey"`
	UpdatedAt time.Time
	Holders   int64
}

type TokenSecurity struct {
	TokenID       int64 `gorm:"primaryKey"`
	UpdatedAt     time.Time
	MintRevoked   bool
	FreezeRevoked bool
	LPBurnedPct   *float64
	Top10Pct      *float64
}

type TokenExternalStat struct {
	TokenID      int64 `gorm:"primaryKey"`
	UpdatedAt    time.Time
	PriceUSD     *float64
	MarketCapUSD *float64
	Volume24hUSD *float64
}
