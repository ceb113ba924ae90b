package pricing

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

// stubRepo is an in-memory repository.Repository used by engine tests.
type stubRepo struct {
	tokens      []repository.Token
	basePools   map[int64][]repository.PoolRow
	quotePools  map[int64][]repository.PoolRow
	stable      *repository.PoolRow
	bars        map[int64][]repository.Bar
	rate        *float64
	bucketStats map[string]repository.BucketStats
	supplies    map[int64]repository.SupplyInfo
	holders     map[int64]int64
	security    map[int64]repository.SecurityInfo
	external    map[int64]repository.ExternalStats
	trades      []repository.TradeRow
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		basePools:   map[int64][]repository.PoolRow{},
		quotePools:  map[int64][]repository.PoolRow{},
		bars:        map[int64][]repository.Bar{},
		bucketStats: map[string]repository.BucketStats{},
		supplies:    map[int64]repository.SupplyInfo{},
		holders:     map[int64]int64{},
		security:    map[int64]repository.SecurityInfo{},
		external:    map[int64]repository.ExternalStats{},
	}
}

func (s *stubRepo) ResolveToken(identifier string) (repository.Token, bool, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	pick := func(match func(repository.Token) bool) (repository.Token, bool) {
		var best repository.Token
		found := false
		for _, t := range s.tokens {
			if match(t) && (!found || t.ID > best.ID) {
				best = t
				found = true
			}
		}
		return best, found
	}
	if t, ok := pick(func(t repository.Token) bool { return strings.ToLower(t.Denom) == ident }); ok {
		return t, true, nil
	}
	if t, ok := pick(func(t repository.Token) bool { return strings.ToLower(t.Symbol) == ident }); ok {
		return t, true, nil
	}
	if t, ok := pick(func(t repository.Token) bool { return strings.Contains(strings.ToLower(t.Name), ident) }); ok {
		return t, true, nil
	}
	if t, ok := pick(func(t repository.Token) bool { return strconv.FormatInt(t.ID, 10) == ident }); ok {
		return t, true, nil
	}
	return repository.Token{}, false, nil
}

func (s *stubRepo) TokenByID(id int64) (repository.Token, bool, error) {
	for _, t := range s.tokens {
		if t.ID == id {
			return t, true, nil
		}
	}
	return repository.Token{}, false, nil
}

func (s *stubRepo) ListPools(tokenID int64, side repository.Side) ([]repository.PoolRow, error) {
	if side == repository.SideQuote {
		return s.quotePools[tokenID], nil
	}
	return s.basePools[tokenID], nil
}

func (s *stubRepo) PoolByContract(pairContract string) (repository.PoolRow, bool, error) {
	all := [][]repository.PoolRow{}
	for _, rows := range s.basePools {
		all = append(all, rows)
	}
	for _, rows := range s.quotePools {
		all = append(all, rows)
	}
	for _, rows := range all {
		for _, row := range rows {
			if row.Pool.PairContract == pairContract {
				return row, true, nil
			}
		}
	}
	return repository.PoolRow{}, false, nil
}

func (s *stubRepo) StablePool() (repository.PoolRow, bool, error) {
	if s.stable == nil {
		return repository.PoolRow{}, false, nil
	}
	return *s.stable, true, nil
}

func (s *stubRepo) PoolCount(tokenID int64) (int64, error) {
	return int64(len(s.basePools[tokenID]) + len(s.quotePools[tokenID])), nil
}

func (s *stubRepo) Bars1m(poolID int64, from, to time.Time) ([]repository.Bar, error) {
	var out []repository.Bar
	for _, b := range s.bars[poolID] {
		if !b.BucketStart.Before(from) && b.BucketStart.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out, nil
}

func (s *stubRepo) LastBarBefore(poolID int64, ts time.Time) (repository.Bar, bool, error) {
	var best repository.Bar
	found := false
	for _, b := range s.bars[poolID] {
		if b.BucketStart.Before(ts) && (!found || b.BucketStart.After(best.BucketStart)) {
			best = b
			found = true
		}
	}
	return best, found, nil
}

func (s *stubRepo) LatestExchangeRate() (float64, bool, error) {
	if s.rate == nil {
		return 0, false, nil
	}
	return *s.rate, true, nil
}

func (s *stubRepo) ExchangeRateAtOrBefore(ts time.Time) (float64, bool, error) {
	return s.LatestExchangeRate()
}

func (s *stubRepo) TokenBucketStats(tokenID int64, bucket time.Duration) (repository.BucketStats, error) {
	return s.bucketStats[fmt.Sprintf("%d/%s", tokenID, bucket)], nil
}

func (s *stubRepo) Supply(tokenID int64) (repository.SupplyInfo, bool, error) {
	info, ok := s.supplies[tokenID]
	return info, ok, nil
}

func (s *stubRepo) HolderCount(tokenID int64) (int64, error) {
	return s.holders[tokenID], nil
}

func (s *stubRepo) Security(tokenID int64) (repository.SecurityInfo, bool, error) {
	info, ok := s.security[tokenID]
	return info, ok, nil
}

func (s *stubRepo) ExternalStats(tokenID int64) (repository.ExternalStats, bool, error) {
	stats, ok := s.external[tokenID]
	return stats, ok, nil
}

func (s *stubRepo) Trades(filter repository.TradeFilter) ([]repository.TradeRow, error) {
	out := append([]repository.TradeRow{}, s.trades...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func int32Ptr(v int32) *int32 {
	return &v
}

// newNativePoolRow builds a native-quoted pool row with 6-exponent reserves
// given in display units.
func newNativePoolRow(id int64, contract string, baseTokenID int64, reserveToken, reserveNative float64, pairType string) repository.PoolRow {
	return repository.PoolRow{
		Pool: repository.Pool{
			ID:           id,
			PairContract: contract,
			BaseTokenID:  baseTokenID,
			QuoteTokenID: 1,
			PairType:     pairType,
			IsUzigQuote:  true,
		},
		ReserveBaseBase:  sdkmath.NewInt(int64(reserveToken * 1e6)),
		ReserveQuoteBase: sdkmath.NewInt(int64(reserveNative * 1e6)),
		BaseExponent:     int32Ptr(6),
		QuoteExponent:    int32Ptr(6),
		QuoteDenom:       NativeDenom,
	}
}

func newTestEngine(repo *stubRepo, now time.Time) *Engine {
	return New(repo, slog.Default(), WithClock(func() time.Time { return now }))
}
