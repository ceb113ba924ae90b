package pricing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zigchain/dex-analytics/pkg/repository"
	"github.com/zigchain/dex-analytics/pkg/types"
)

// FillPolicy controls what happens to output buckets with no source bars.
type FillPolicy string

const (
	// FillPrev emits a flat candle at the carried previous close, once one
	// exists.
	FillPrev FillPolicy = "prev"
	// FillZero emits an all-zero candle and resets continuity tracking to 0.
	// The next real bar then opens at 0, which renders as a visible jump on
	// charts; that reset is deliberate.
	FillZero FillPolicy = "zero"
	// FillNone omits empty buckets entirely.
	FillNone FillPolicy = "none"
)

// CandleMode selects plain price candles or market-cap-scaled candles.
type CandleMode string

const (
	ModePrice CandleMode = "price"
	ModeMcap  CandleMode = "mcap"
)

// CandleRequest describes one chart query. To is exclusive.
type CandleRequest struct {
	From      time.Time
	To        time.Time
	Timeframe string
	Fill      FillPolicy
	Mode      CandleMode
	Unit      Unit
	// Invert flips quote-per-base values to base-per-quote, for tokens whose
	// dominant side is the quote leg.
	Invert bool
}

// DefaultStepSeconds is used for unrecognized timeframe tokens.
const DefaultStepSeconds int64 = 60

var timeframeUnitSeconds = map[byte]int64{
	'm': 60,
	'h': 3600,
	'd': 86400,
	'w': 604800,
	'M': 2592000, // 30 days
}

// StepSeconds parses a timeframe token such as "1m", "5m", "1h", "1d", "1w"
// or "1M" into a step duration in seconds. Unrecognized tokens fall back to
// one minute.
func StepSeconds(timeframe string) int64 {
	if len(timeframe) < 2 {
		return DefaultStepSeconds
	}
	unit, ok := timeframeUnitSeconds[timeframe[len(timeframe)-1]]
	if !ok {
		return DefaultStepSeconds
	}
	n, err := strconv.ParseInt(timeframe[:len(timeframe)-1], 10, 64)
	if err != nil || n <= 0 {
		return DefaultStepSeconds
	}
	return n * unit
}

// rawBucket is one output bucket before continuity and fill handling.
type rawBucket struct {
	ts     int64
	open   float64
	high   float64
	low    float64
	close  float64
	volume float64
	trades int64
	n      int
}

func floorStep(ts, step int64) int64 {
	q := ts / step
	if ts%step != 0 && ts < 0 {
		q--
	}
	return q * step
}

// aggregateBuckets groups ascending 1-minute bars into [from, to] inclusive
// buckets of the given step.
func aggregateBuckets(bars []repository.Bar, from, to, step int64) []rawBucket {
	count := (to-from)/step + 1
	buckets := make([]rawBucket, count)
	for i := range buckets {
		buckets[i].ts = from + int64(i)*step
	}
	for _, b := range bars {
		idx := (b.BucketStart.Unix() - from) / step
		if idx < 0 || idx >= count {
			continue
		}
		bk := &buckets[idx]
		if bk.n == 0 {
			bk.open = b.Open
			bk.high = b.High
			bk.low = b.Low
		} else {
			if b.High > bk.high {
				bk.high = b.High
			}
			if b.Low < bk.low {
				bk.low = b.Low
			}
		}
		// bars arrive in ascending order, so the last close wins
		bk.close = b.Close
		bk.volume += b.Volume
		bk.trades += b.TradeCount
		bk.n++
	}
	return buckets
}

// assembleCandles applies the continuity adjustment and fill policy. Each
// produced bucket opens at the carried previous close, with high/low widened
// so low <= open <= high still holds.
func assembleCandles(buckets []rawBucket, fill FillPolicy, prevClose *float64) []types.Candle {
	out := make([]types.Candle, 0, len(buckets))
	for _, bk := range buckets {
		if bk.n == 0 {
			switch fill {
			case FillZero:
				out = append(out, types.Candle{Ts: bk.ts})
				prevClose = floatPtr(0)
			case FillPrev:
				if prevClose != nil {
					c := *prevClose
					out = append(out, types.Candle{Ts: bk.ts, Open: c, High: c, Low: c, Close: c})
				}
			}
			continue
		}

		o, h, l, c := bk.open, bk.high, bk.low, bk.close
		if prevClose != nil {
			o = *prevClose
			if h < o {
				h = o
			}
			if l > o {
				l = o
			}
		}
		out = append(out, types.Candle{
			Ts:     bk.ts,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: bk.volume,
			Trades: bk.trades,
		})
		prevClose = floatPtr(c)
	}
	return out
}

func invertValue(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}

// invertCandle flips quote-per-base to base-per-quote. Inversion reverses
// ordering, so the old low becomes the new high and vice versa.
func invertCandle(c *types.Candle) {
	o, cl := invertValue(c.Open), invertValue(c.Close)
	h, l := invertValue(c.Low), invertValue(c.High)
	c.Open, c.Close, c.High, c.Low = o, cl, h, l
}

func scaleCandlePrices(c *types.Candle, factor float64) {
	c.Open *= factor
	c.High *= factor
	c.Low *= factor
	c.Close *= factor
}

// Candles re-buckets stored 1-minute bars for a pool into the requested
// timeframe. Both range endpoints are floored to step boundaries; the
// previous close is seeded from the last bar strictly before the range.
func (e *Engine) Candles(token repository.Token, poolID int64, req CandleRequest) (types.CandleSeries, error) {
	step := StepSeconds(req.Timeframe)
	if req.Fill == "" {
		req.Fill = FillPrev
	}
	if req.Mode == "" {
		req.Mode = ModePrice
	}
	if req.Unit == "" {
		req.Unit = UnitNative
	}

	alignedFrom := floorStep(req.From.Unix(), step)
	alignedTo := floorStep(req.To.Unix()-1, step)
	if alignedTo < alignedFrom {
		alignedTo = alignedFrom
	}
	rangeStart := time.Unix(alignedFrom, 0).UTC()
	rangeEnd := time.Unix(alignedTo+step, 0).UTC()

	bars, err := e.repo.Bars1m(poolID, rangeStart, rangeEnd)
	if err != nil {
		return types.CandleSeries{}, fmt.Errorf("bars for pool %d: %w", poolID, err)
	}

	var prevClose *float64
	if seed, found, err := e.repo.LastBarBefore(poolID, rangeStart); err != nil {
		return types.CandleSeries{}, fmt.Errorf("seed bar for pool %d: %w", poolID, err)
	} else if found {
		prevClose = floatPtr(seed.Close)
	}
	seedUsed := prevClose

	buckets := aggregateBuckets(bars, alignedFrom, alignedTo, step)
	candles := assembleCandles(buckets, req.Fill, prevClose)

	if req.Invert {
		for i := range candles {
			invertCandle(&candles[i])
		}
	}

	if req.Mode == ModeMcap {
		supply, found, err := e.repo.Supply(token.ID)
		if err != nil {
			return types.CandleSeries{}, fmt.Errorf("supply for token %d: %w", token.ID, err)
		}
		// missing circulating supply leaves price-mode values unscaled
		if found {
			if circ := Scale(supply.CirculatingBase, token.Exponent); circ != nil {
				for i := range candles {
					scaleCandlePrices(&candles[i], *circ)
				}
			}
		}
	}

	if req.Unit == UnitUSD {
		if rate := e.liveRate(); rate != nil {
			for i := range candles {
				scaleCandlePrices(&candles[i], *rate)
				candles[i].Volume *= *rate
			}
		}
	}

	return types.CandleSeries{
		Meta: types.CandleMeta{
			Timeframe:   req.Timeframe,
			Mode:        string(req.Mode),
			Unit:        string(req.Unit),
			Fill:        string(req.Fill),
			StepSeconds: step,
			From:        alignedFrom,
			To:          alignedTo + step,
			PrevClose:   seedUsed,
		},
		Bars: candles,
	}, nil
}
