package pricing

import (
	"github.com/zigchain/dex-analytics/pkg/types"
)

// RouteRequest describes a swap routing/quote query. A nil AmountIn asks
// for the nominal $100-equivalent default.
type RouteRequest struct {
	From     string
	To       string
	AmountIn *float64
}

// Route quotes a swap between two tokens, hopping through the native currency
// when neither side is native. Missing liquidity yields empty pairs and a nil
// cross price, not an error.
func (e *Engine) Route(req RouteRequest) (types.Route, error) {
	fromTok, err := e.ResolveToken(req.From)
	if err != nil {
		return types.Route{}, err
	}
	toTok, err := e.ResolveToken(req.To)
	if err != nil {
		return types.Route{}, err
	}

	rate := e.liveRate()
	rateV := 0.0
	if rate != nil {
		rateV = *rate
	}

	route := types.Route{Pairs: []types.RouteLeg{}}
	fromNative := IsNativeCurrency(fromTok)
	toNative := IsNativeCurrency(toTok)

	switch {
	case fromNative && toNative:
		amt := amountOrDefault(req.AmountIn, true, rateV, nil)
		route.Path = []string{fromTok.Denom}
		route.AmountIn = amt
		route.AmountOut = amt

	case fromNative:
		pools, err := e.NativeQuotedPools(toTok)
		if err != nil {
			return types.Route{}, err
		}
		amt := amountOrDefault(req.AmountIn, true, rateV, pools)
		route.Path = []string{fromTok.Denom, toTok.Denom}
		route.AmountIn = amt
		if leg, ok := bestLeg(pools, true, amt, fromTok.Denom, toTok.Denom); ok {
			route.Pairs = append(route.Pairs, leg)
			route.AmountOut = leg.AmountOut
		}

	case toNative:
		pools, err := e.NativeQuotedPools(fromTok)
		if err != nil {
			return types.Route{}, err
		}
		amt := amountOrDefault(req.AmountIn, false, rateV, pools)
		route.Path = []string{fromTok.Denom, toTok.Denom}
		route.AmountIn = amt
		if leg, ok := bestLeg(pools, false, amt, fromTok.Denom, toTok.Denom); ok {
			route.Pairs = append(route.Pairs, leg)
			route.AmountOut = leg.AmountOut
		}

	default:
		fromPools, err := e.NativeQuotedPools(fromTok)
		if err != nil {
			return types.Route{}, err
		}
		toPools, err := e.NativeQuotedPools(toTok)
		if err != nil {
			return types.Route{}, err
		}
		amt := amountOrDefault(req.AmountIn, false, rateV, fromPools)
		route.Path = []string{fromTok.Denom, NativeDenom, toTok.Denom}
		route.AmountIn = amt
		if leg, ok := bestLeg(fromPools, false, amt, fromTok.Denom, NativeDenom); ok {
			route.Pairs = append(route.Pairs, leg)
			if leg.AmountOut > 0 {
				if leg2, ok := bestLeg(toPools, true, leg.AmountOut, NativeDenom, toTok.Denom); ok {
					route.Pairs = append(route.Pairs, leg2)
					route.AmountOut = leg2.AmountOut
				}
			}
		}
	}

	if route.AmountIn > 0 && route.AmountOut > 0 {
		route.CrossPrice = floatPtr(route.AmountOut / route.AmountIn)
	}
	if rate != nil {
		route.AmountInUSD = usdBaseline(route.AmountIn, fromNative, firstLeg(route.Pairs), *rate)
		route.AmountOutUSD = usdBaseline(route.AmountOut, toNative, lastLeg(route.Pairs), *rate)
	}
	return route, nil
}

func amountOrDefault(amount *float64, fromIsNative bool, rate float64, pools []PoolQuote) float64 {
	if amount != nil && *amount > 0 {
		return *amount
	}
	return DefaultTradeSize(fromIsNative, rate, pools)
}

func bestLeg(pools []PoolQuote, fromIsNative bool, amountIn float64, fromDenom, toDenom string) (types.RouteLeg, bool) {
	idx, res := PickBestPool(pools, fromIsNative, amountIn)
	if idx < 0 {
		return types.RouteLeg{}, false
	}
	p := pools[idx]
	return types.RouteLeg{
		PairContract: p.Pool.PairContract,
		PoolID:       p.Pool.ID,
		FromDenom:    fromDenom,
		ToDenom:      toDenom,
		AmountIn:     amountIn,
		AmountOut:    res.Out,
		ExecPrice:    res.Price,
		MidPrice:     p.MidPrice,
		Impact:       res.Impact,
		Fee:          p.Fee,
	}, true
}

func firstLeg(legs []types.RouteLeg) *types.RouteLeg {
	if len(legs) == 0 {
		return nil
	}
	return &legs[0]
}

func lastLeg(legs []types.RouteLeg) *types.RouteLeg {
	if len(legs) == 0 {
		return nil
	}
	return &legs[len(legs)-1]
}

// usdBaseline values one end of the route in USD: native amounts convert
// directly, token amounts go through the leg's mid price first.
func usdBaseline(amount float64, isNative bool, leg *types.RouteLeg, rate float64) *float64 {
	if amount <= 0 {
		return nil
	}
	if isNative {
		return floatPtr(amount * rate)
	}
	if leg == nil || leg.MidPrice <= 0 {
		return nil
	}
	return floatPtr(amount * leg.MidPrice * rate)
}
