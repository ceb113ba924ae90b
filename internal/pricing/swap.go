package pricing

// NominalTradeUSD is the synthetic trade size used when the caller does not
// supply an amount, so routing and impact queries have a sensible default.
const NominalTradeUSD = 100.0

// SwapResult is the outcome of a simulated constant-product swap.
// Price is always expressed in native units per token. Impact is signed:
// positive means the trade pushed the price against the trader.
type SwapResult struct {
	Out    float64
	Price  float64
	Impact float64
}

// Simulate executes the constant-product formula with the fee deducted from
// the input. Non-positive reserves or input short-circuit to an all-zero
// result so that empty pools participate in selection but never win.
func Simulate(fromIsNative bool, amountIn, reserveNative, reserveToken, fee float64) SwapResult {
	if amountIn <= 0 || reserveNative <= 0 || reserveToken <= 0 {
		return SwapResult{}
	}
	xIn := amountIn * (1 - fee)
	if xIn <= 0 {
		return SwapResult{}
	}
	mid := reserveNative / reserveToken

	if fromIsNative {
		out := xIn * reserveToken / (reserveNative + xIn)
		if out <= 0 {
			return SwapResult{}
		}
		price := amountIn / out
		return SwapResult{Out: out, Price: price, Impact: price/mid - 1}
	}

	out := xIn * reserveNative / (reserveToken + xIn)
	price := out / amountIn
	if price <= 0 {
		return SwapResult{}
	}
	return SwapResult{Out: out, Price: price, Impact: mid/price - 1}
}

// PickBestPool simulates the trade on every candidate and returns the index
// of the pool with the highest output, first-seen winning ties. When every
// candidate simulates to zero the first pool is still returned with a zero
// result; callers treat a zero Out as "no usable route". Returns -1 for an
// empty candidate list.
func PickBestPool(pools []PoolQuote, fromIsNative bool, amountIn float64) (int, SwapResult) {
	best := -1
	var bestRes SwapResult
	for i, p := range pools {
		res := Simulate(fromIsNative, amountIn, p.ReserveNative, p.ReserveToken, p.Fee)
		if best == -1 || res.Out > bestRes.Out {
			best = i
			bestRes = res
		}
	}
	return best, bestRes
}

// DefaultTradeSize synthesizes a nominal $100-equivalent trade amount.
// For a buy (native in) it is the native equivalent of $100; for a sell it is
// that amount divided by the average mid price of the candidate pools.
func DefaultTradeSize(fromIsNative bool, zigUSD float64, pools []PoolQuote) float64 {
	if zigUSD <= 0 {
		zigUSD = 1
	}
	zig := NominalTradeUSD / zigUSD
	if fromIsNative {
		return zig
	}
	avg := 1.0
	if len(pools) > 0 {
		sum := 0.0
		for _, p := range pools {
			sum += p.MidPrice
		}
		avg = sum / float64(len(pools))
	}
	if avg <= 0 {
		avg = 1
	}
	return zig / avg
}
