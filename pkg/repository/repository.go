package repository

import "time"

// Repository is the read contract the pricing engine consumes. Single-row
// lookups report absence through the boolean so that a store failure stays
// distinguishable from a missing row.
type Repository interface {
	// ResolveToken matches an identifier against denom (exact), symbol (exact),
	// name (substring) and the numeric id in string form, in that precedence
	// order, case-insensitively. Ties resolve to the highest token id.
	ResolveToken(identifier string) (Token, bool, error)
	// TokenByID returns a token by its numeric id.
	TokenByID(id int64) (Token, bool, error)

	// ListPools returns pool rows for a token. With SideBase the token must be
	// the base asset and the quote asset must be the native currency; with
	// SideQuote the token must be the quote asset of the pool.
	ListPools(tokenID int64, side Side) ([]PoolRow, error)
	// PoolByContract returns the pool row for a pair contract address.
	PoolByContract(pairContract string) (PoolRow, bool, error)
	// StablePool returns the pool quoting the native currency against the
	// designated stable asset, if one exists.
	StablePool() (PoolRow, bool, error)
	// PoolCount returns the number of pools the token participates in.
	PoolCount(tokenID int64) (int64, error)

	// Bars1m returns 1-minute bars with bucket start in [from, to), ascending.
	Bars1m(poolID int64, from, to time.Time) ([]Bar, error)
	// LastBarBefore returns the latest 1-minute bar strictly before ts.
	LastBarBefore(poolID int64, ts time.Time) (Bar, bool, error)

	// LatestExchangeRate returns the most recent ZIG/USD rate.
	LatestExchangeRate() (float64, bool, error)
	// ExchangeRateAtOrBefore returns the ZIG/USD rate at or before ts.
	ExchangeRateAtOrBefore(ts time.Time) (float64, bool, error)

	// TokenBucketStats reads the pre-aggregated stats matrix for a token and
	// bucket width.
	TokenBucketStats(tokenID int64, bucket time.Duration) (BucketStats, error)

	Supply(tokenID int64) (SupplyInfo, bool, error)
	HolderCount(tokenID int64) (int64, error)
	Security(tokenID int64) (SecurityInfo, bool, error)
	ExternalStats(tokenID int64) (ExternalStats, bool, error)

	// Trades returns shaped-trade input rows matching the filter, newest first.
	Trades(filter TradeFilter) ([]TradeRow, error)
}
