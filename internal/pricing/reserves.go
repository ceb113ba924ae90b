package pricing

import (
	"fmt"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

// PoolQuote is a pool candidate with reserves in display units, ready for
// swap simulation. Pools without tracked state carry zero reserves.
type PoolQuote struct {
	Pool          repository.Pool
	ReserveNative float64
	ReserveToken  float64
	// MidPrice is the last stored quote (native per token), falling back to
	// the reserve-implied price when no stored quote exists.
	MidPrice float64
	TVL      float64
	Fee      float64
}

// NativeQuotedPools loads every pool where the token is the base asset and
// the native currency is the quote asset.
func (e *Engine) NativeQuotedPools(token repository.Token) ([]PoolQuote, error) {
	rows, err := e.repo.ListPools(token.ID, repository.SideBase)
	if err != nil {
		return nil, fmt.Errorf("list pools for token %d: %w", token.ID, err)
	}

	quotes := make([]PoolQuote, len(rows))
	for i, row := range rows {
		quotes[i] = poolQuoteFromRow(row)
	}
	return quotes, nil
}

func poolQuoteFromRow(row repository.PoolRow) PoolQuote {
	q := PoolQuote{
		Pool: row.Pool,
		Fee:  PairFee(row.Pool.PairType),
	}
	nativeExp := NativeExponent
	if rt := Scale(row.ReserveBaseBase, row.BaseExponent); rt != nil {
		q.ReserveToken = *rt
	}
	if rz := Scale(row.ReserveQuoteBase, &nativeExp); rz != nil {
		q.ReserveNative = *rz
	}
	if row.BasePriceInZig != nil && *row.BasePriceInZig > 0 {
		q.MidPrice = *row.BasePriceInZig
	} else if q.ReserveToken > 0 {
		q.MidPrice = q.ReserveNative / q.ReserveToken
	}
	if row.TVLZig != nil {
		q.TVL = *row.TVLZig
	}
	return q
}
