package pricing

import (
	"fmt"
	"strings"

	"github.com/zigchain/dex-analytics/pkg/repository"
	"github.com/zigchain/dex-analytics/pkg/types"
)

// Unit selects the currency the caller wants derived values expressed in.
type Unit string

const (
	UnitNative Unit = "native"
	UnitUSD    Unit = "usd"
)

// TradeClass buckets a trade by worth.
type TradeClass string

const (
	ClassShrimp TradeClass = "shrimp"
	ClassShark  TradeClass = "shark"
	ClassWhale  TradeClass = "whale"
)

// Classify buckets a worth value: below 1000 is shrimp, 1000 through 10000
// inclusive is shark, above is whale.
func Classify(worth float64) TradeClass {
	switch {
	case worth < 1000:
		return ClassShrimp
	case worth <= 10000:
		return ClassShark
	default:
		return ClassWhale
	}
}

// ClassBounds maps a class to value bounds usable as trade predicates.
// The shark upper bound is inclusive, so whale queries start just above it.
func ClassBounds(class TradeClass) (min, max *float64) {
	switch class {
	case ClassShrimp:
		return nil, floatPtr(1000)
	case ClassShark:
		return floatPtr(1000), floatPtr(10000)
	case ClassWhale:
		return floatPtr(10000), nil
	}
	return nil, nil
}

func isNativeDenom(denom string) bool {
	d := strings.ToLower(denom)
	return d == NativeDenom || d == NativeSymbol
}

// ShapeTrade converts a raw joined trade row into a fully priced trade.
// Derived values degrade to nil field by field when reference data is
// missing; the row itself is never rejected.
func ShapeTrade(row repository.TradeRow, liveRate *float64, unit Unit) types.ShapedTrade {
	nativeExp := NativeExponent

	offerExp := row.OfferExponent
	if isNativeDenom(row.OfferDenom) {
		offerExp = &nativeExp
	}
	askExp := row.AskExponent
	if isNativeDenom(row.AskDenom) {
		askExp = &nativeExp
	}

	offerAmt := Scale(row.OfferAmountBase, offerExp)
	returnAmt := Scale(row.ReturnAmountBase, askExp)

	// The quote-denominated leg of the trade: the offer on a buy, the return
	// on a sell. Matching on denom covers liquidity events too.
	var quoteLeg *float64
	switch {
	case row.OfferDenom == row.QuoteDenom:
		quoteLeg = offerAmt
	case row.AskDenom == row.QuoteDenom:
		quoteLeg = returnAmt
	}
	var baseLeg *float64
	switch {
	case row.OfferDenom != row.QuoteDenom:
		baseLeg = offerAmt
	case row.AskDenom != row.QuoteDenom:
		baseLeg = returnAmt
	}

	var valueNative *float64
	if row.IsUzigQuote {
		valueNative = quoteLeg
	} else if quoteLeg != nil && row.QuotePriceInZig != nil {
		valueNative = floatPtr(*quoteLeg * *row.QuotePriceInZig)
	}

	fx := row.RateAtTrade
	if fx == nil {
		fx = liveRate
	}
	var valueUSD *float64
	if fx != nil {
		valueUSD = ToUSD(valueNative, *fx)
	}

	var priceNative *float64
	if valueNative != nil && baseLeg != nil && *baseLeg > 0 {
		priceNative = floatPtr(*valueNative / *baseLeg)
	}

	// Worth basis for classification: the native leg itself when one leg is
	// the native currency, otherwise the derived native value.
	worthNative := valueNative
	switch {
	case isNativeDenom(row.OfferDenom):
		worthNative = offerAmt
	case isNativeDenom(row.AskDenom):
		worthNative = returnAmt
	}
	worth := worthNative
	if unit == UnitUSD && fx != nil {
		worth = ToUSD(worthNative, *fx)
	} else if unit == UnitUSD {
		worth = nil
	}

	shaped := types.ShapedTrade{
		TradeID:      row.TradeID,
		Ts:           row.CreatedAt.Unix(),
		Direction:    string(row.Direction),
		PairContract: row.PairContract,
		OfferDenom:   row.OfferDenom,
		OfferAmount:  offerAmt,
		AskDenom:     row.AskDenom,
		ReturnAmount: returnAmt,
		PriceNative:  priceNative,
		ValueNative:  valueNative,
		ValueUSD:     valueUSD,
		Signer:       row.Signer,
		TxHash:       row.TxHash,
	}
	if worth != nil {
		shaped.Class = string(Classify(*worth))
	}
	return shaped
}

// ListTrades reads trade rows matching the filter and shapes each of them.
func (e *Engine) ListTrades(filter repository.TradeFilter, unit Unit) ([]types.ShapedTrade, error) {
	rows, err := e.repo.Trades(filter)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	rate := e.liveRate()
	shaped := make([]types.ShapedTrade, len(rows))
	for i, row := range rows {
		shaped[i] = ShapeTrade(row, rate, unit)
	}
	return shaped, nil
}
