// Package types holds the wire objects produced by the analytics core.
// All of them serialize to JSON; nullable derived numbers are pointers so
// that degraded data renders as explicit nulls rather than zeros.
package types

import "encoding/json"

// Envelope wraps every published message.
type Envelope struct {
	Type    string          `json:"type"`
	Ts      int64           `json:"ts"`
	TokenID int64           `json:"token_id"`
	Data    json.RawMessage `json:"data"`
}

// ErrorResult is the error-shaped response for identifier resolution failures.
type ErrorResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorResult builds a failed result with the given message.
func NewErrorResult(msg string) ErrorResult {
	return ErrorResult{Success: false, Error: msg}
}

// Candle is one OHLCV bar of an aggregated series.
type Candle struct {
	Ts     int64   `json:"ts"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Trades int64   `json:"trades"`
}

// CandleMeta reports how a candle series was produced. From is inclusive,
// To is exclusive (last bar timestamp plus one step).
type CandleMeta struct {
	Timeframe   string   `json:"timeframe"`
	Mode        string   `json:"mode"`
	Unit        string   `json:"unit"`
	Fill        string   `json:"fill"`
	StepSeconds int64    `json:"step_seconds"`
	From        int64    `json:"from"`
	To          int64    `json:"to"`
	PrevClose   *float64 `json:"prev_close"`
}

// CandleSeries is the chart query response.
type CandleSeries struct {
	Meta CandleMeta `json:"meta"`
	Bars []Candle   `json:"bars"`
}

// ShapedTrade is a fully priced trade listing entry.
type ShapedTrade struct {
	TradeID      int64    `json:"trade_id"`
	Ts           int64    `json:"ts"`
	Direction    string   `json:"direction"`
	PairContract string   `json:"pair_contract"`
	OfferDenom   string   `json:"offer_denom"`
	OfferAmount  *float64 `json:"offer_amount"`
	AskDenom     string   `json:"ask_denom"`
	ReturnAmount *float64 `json:"return_amount"`
	PriceNative  *float64 `json:"price_native"`
	ValueNative  *float64 `json:"value_native"`
	ValueUSD     *float64 `json:"value_usd"`
	Class        string   `json:"class,omitempty"`
	Signer       string   `json:"signer"`
	TxHash       string   `json:"tx_hash"`
}

// RouteLeg is one hop of a swap route.
type RouteLeg struct {
	PairContract string  `json:"pair_contract"`
	PoolID       int64   `json:"pool_id"`
	FromDenom    string  `json:"from_denom"`
	ToDenom      string  `json:"to_denom"`
	AmountIn     float64 `json:"amount_in"`
	AmountOut    float64 `json:"amount_out"`
	ExecPrice    float64 `json:"exec_price"`
	MidPrice     float64 `json:"mid_price"`
	Impact       float64 `json:"impact"`
	Fee          float64 `json:"fee"`
}

// Route is the swap routing/quote response. CrossPrice is output per input
// across all legs; nil when the route has no usable liquidity.
type Route struct {
	Path         []string   `json:"path"`
	Pairs        []RouteLeg `json:"pairs"`
	AmountIn     float64    `json:"amount_in"`
	AmountOut    float64    `json:"amount_out"`
	CrossPrice   *float64   `json:"cross_price"`
	AmountInUSD  *float64   `json:"amount_in_usd"`
	AmountOutUSD *float64   `json:"amount_out_usd"`
}

// PriceBlock carries current price figures and per-bucket change percentages.
type PriceBlock struct {
	Native *float64            `json:"native"`
	USD    *float64            `json:"usd"`
	Source string              `json:"source"`
	Change map[string]*float64 `json:"change"`
}

// BucketBlock carries volume/tx/liquidity aggregates for one time bucket.
type BucketBlock struct {
	VolumeBuy     float64  `json:"volume_buy"`
	VolumeSell    float64  `json:"volume_sell"`
	VolumeTotal   float64  `json:"volume_total"`
	TxBuy         int64    `json:"tx_buy"`
	TxSell        int64    `json:"tx_sell"`
	TxTotal       int64    `json:"tx_total"`
	UniqueTraders int64    `json:"unique_traders"`
	Liquidity     *float64 `json:"liquidity"`
}

// BestPool describes the pool selected as the pricing route for a token.
type BestPool struct {
	PoolID        int64   `json:"pool_id"`
	PairContract  string  `json:"pair_contract"`
	PairType      string  `json:"pair_type"`
	ReserveNative float64 `json:"reserve_native"`
	ReserveToken  float64 `json:"reserve_token"`
	MidPrice      float64 `json:"mid_price"`
	TVL           float64 `json:"tvl"`
	Fee           float64 `json:"fee"`
}

// SecurityBlock mirrors the stored on-chain safety facts.
type SecurityBlock struct {
	MintRevoked   bool     `json:"mint_revoked"`
	FreezeRevoked bool     `json:"freeze_revoked"`
	LPBurnedPct   *float64 `json:"lp_burned_pct"`
	Top10Pct      *float64 `json:"top10_pct"`
}

// TokenSummary is the denormalized per-token response object. It is what the
// HTTP layer caches and what the publisher sends on token-dirty events.
type TokenSummary struct {
	TokenID   int64  `json:"token_id"`
	Denom     string `json:"denom"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exponent  int32  `json:"exponent"`
	ImageURL  string `json:"image_url,omitempty"`
	Website   string `json:"website,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	CreatedAt int64  `json:"created_at"`

	Price PriceBlock `json:"price"`

	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
	MarketCap         *float64 `json:"market_cap"`
	FDV               *float64 `json:"fdv"`

	Buckets map[string]BucketBlock `json:"buckets"`

	Holders  int64          `json:"holders"`
	Pools    int64          `json:"pools"`
	BestPool *BestPool      `json:"best_pool"`
	Security *SecurityBlock `json:"security,omitempty"`
}
