package repository

import (
	"fmt"
	"math"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

// parseBaseAmount converts a stored decimal string to a math.Int; nil or
// unparseable input yields the nil Int, which the engine treats as unknown.
func parseBaseAmount(s *string) sdkmath.Int {
	if s == nil || *s == "" {
		return sdkmath.Int{}
	}
	amount, ok := sdkmath.NewIntFromString(*s)
	if !ok {
		return sdkmath.Int{}
	}
	return amount
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toToken(m Token) repository.Token {
	return repository.Token{
		ID:              m.TokenID,
		Denom:           m.Denom,
		Symbol:          m.Symbol,
		Name:            m.Name,
		Exponent:        m.Exponent,
		TotalSupplyBase: parseBaseAmount(strOrNil(m.TotalSupplyBase)),
		MaxSupplyBase:   parseBaseAmount(strOrNil(m.MaxSupplyBase)),
		IsStable:        m.IsStable,
		ImageURL:        m.ImageURL,
		Website:         m.Website,
		Telegram:        m.Telegram,
		Twitter:         m.Twitter,
		CreatedAt:       m.CreatedAt,
	}
}

// ResolveToken probes denom, symbol, name substring and the id in string
// form, in precedence order, breaking ties by the highest token id.
func (r *Repository) ResolveToken(identifier string) (repository.Token, bool, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if ident == "" {
		return repository.Token{}, false, nil
	}

	probes := []struct {
		cond string
		arg  any
	}{
		{"LOWER(denom) = ?", ident},
		{"LOWER(symbol) = ?", ident},
		{"LOWER(name) LIKE ?", "%" + ident + "%"},
		{"CAST(token_id AS TEXT) = ?", ident},
	}
	for _, probe := range probes {
		var token Token
		result := r.dbCon.Model(&Token{}).
			Where(probe.cond, probe.arg).
			Order("token_id DESC").
			Limit(1).
			Find(&token)
		if result.Error != nil {
			return repository.Token{}, false, fmt.Errorf("resolve token: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return toToken(token), true, nil
		}
	}
	return repository.Token{}, false, nil
}

func (r *Repository) TokenByID(id int64) (repository.Token, bool, error) {
	var token Token
	result := r.dbCon.Model(&Token{}).Limit(1).Find(&token, "token_id = ?", id)
	if result.Error != nil {
		return repository.Token{}, false, fmt.Errorf("token by id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.Token{}, false, nil
	}
	return toToken(token), true, nil
}

type poolRowScan struct {
	PoolID           int64
	PairContract     string
	BaseTokenID      int64
	QuoteTokenID     int64
	PairType         string
	IsUzigQuote      bool
	CreatedAt        time.Time
	ReserveBaseBase  *string
	ReserveQuoteBase *string
	BaseExponent     *int32
	QuoteExponent    *int32
	QuoteDenom       string
	BasePriceInZig   *float64
	QuotePriceInZig  *float64
	TVLZig           *float64
}

const poolRowSelect = `
SELECT p.pool_id, p.pair_contract, p.base_token_id, p.quote_token_id, p.pair_type,
       p.is_uzig_quote, p.created_at,
       s.reserve_base_base, s.reserve_quote_base,
       bt.exponent AS base_exponent, qt.exponent AS quote_exponent, qt.denom AS quote_denom,
       (SELECT pr.price_in_zig FROM prices pr
         WHERE pr.token_id = p.base_token_id AND pr.pool_id = p.pool_id
         ORDER BY pr.updated_at DESC LIMIT 1) AS base_price_in_zig,
       (SELECT pr.price_in_zig FROM prices pr
         WHERE pr.token_id = p.quote_token_id AND pr.pool_id = p.pool_id
         ORDER BY pr.updated_at DESC LIMIT 1) AS quote_price_in_zig,
       ps.tvl_zig
FROM pools p
JOIN tokens bt ON bt.token_id = p.base_token_id
JOIN tokens qt ON qt.token_id = p.quote_token_id
LEFT JOIN pool_states s ON s.pool_id = p.pool_id
LEFT JOIN pool_stats ps ON ps.pool_id = p.pool_id
`

func toPoolRow(scan poolRowScan) repository.PoolRow {
	return repository.PoolRow{
		Pool: repository.Pool{
			ID:           scan.PoolID,
			PairContract: scan.PairContract,
			BaseTokenID:  scan.BaseTokenID,
			QuoteTokenID: scan.QuoteTokenID,
			PairType:     scan.PairType,
			IsUzigQuote:  scan.IsUzigQuote,
			CreatedAt:    scan.CreatedAt,
		},
		ReserveBaseBase:  parseBaseAmount(scan.ReserveBaseBase),
		ReserveQuoteBase: parseBaseAmount(scan.ReserveQuoteBase),
		BaseExponent:     scan.BaseExponent,
		QuoteExponent:    scan.QuoteExponent,
		QuoteDenom:       scan.QuoteDenom,
		BasePriceInZig:   scan.BasePriceInZig,
		QuotePriceInZig:  scan.QuotePriceInZig,
		TVLZig:           scan.TVLZig,
	}
}

func (r *Repository) ListPools(tokenID int64, side repository.Side) ([]repository.PoolRow, error) {
	var (
		where string
		args  []any
	)
	switch side {
	case repository.SideQuote:
		where = "WHERE p.quote_token_id = ?"
		args = []any{tokenID}
	default:
		where = "WHERE p.base_token_id = ? AND p.is_uzig_quote = ?"
		args = []any{tokenID, true}
	}

	var scans []poolRowScan
	result := r.dbCon.Raw(poolRowSelect+where+" ORDER BY p.pool_id", args...).Scan(&scans)
	if result.Error != nil {
		return nil, fmt.Errorf("list pools: %w", result.Error)
	}

	rows := make([]repository.PoolRow, len(scans))
	for i, scan := range scans {
		rows[i] = toPoolRow(scan)
	}
	return rows, nil
}

func (r *Repository) PoolByContract(pairContract string) (repository.PoolRow, bool, error) {
	var scans []poolRowScan
	result := r.dbCon.Raw(poolRowSelect+"WHERE p.pair_contract = ? LIMIT 1", pairContract).Scan(&scans)
	if result.Error != nil {
		return repository.PoolRow{}, false, fmt.Errorf("pool by contract: %w", result.Error)
	}
	if len(scans) == 0 {
		return repository.PoolRow{}, false, nil
	}
	return toPoolRow(scans[0]), true, nil
}

// StablePool returns the native-quoted pool whose base asset is flagged
// stable, preferring the deepest one.
func (r *Repository) StablePool() (repository.PoolRow, bool, error) {
	var scans []poolRowScan
	result := r.dbCon.Raw(
		poolRowSelect+"WHERE p.is_uzig_quote = ? AND bt.is_stable = ? ORDER BY ps.tvl_zig DESC LIMIT 1",
		true, true,
	).Scan(&scans)
	if result.Error != nil {
		return repository.PoolRow{}, false, fmt.Errorf("stable pool: %w", result.Error)
	}
	if len(scans) == 0 {
		return repository.PoolRow{}, false, nil
	}
	return toPoolRow(scans[0]), true, nil
}

func (r *Repository) PoolCount(tokenID int64) (int64, error) {
	var count int64
	result := r.dbCon.Model(&Pool{}).
		Where("base_token_id = ? OR quote_token_id = ?", tokenID, tokenID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("pool count: %w", result.Error)
	}
	return count, nil
}

func toBar(m Bar1m) repository.Bar {
	return repository.Bar{
		PoolID:      m.PoolID,
		BucketStart: time.Unix(m.BucketStart, 0).UTC(),
		Open:        m.Open,
		High:        m.High,
		Low:         m.Low,
		Close:       m.Close,
		Volume:      m.Volume,
		TradeCount:  m.TradeCount,
	}
}

func (r *Repository) Bars1m(poolID int64, from, to time.Time) ([]repository.Bar, error) {
	var bars []Bar1m
	result := r.dbCon.Model(&Bar1m{}).
		Where("pool_id = ? AND bucket_start >= ? AND bucket_start < ?", poolID, from.Unix(), to.Unix()).
		Order("bucket_start ASC").
		Find(&bars)
	if result.Error != nil {
		return nil, fmt.Errorf("bars: %w", result.Error)
	}

	out := make([]repository.Bar, len(bars))
	for i, b := range bars {
		out[i] = toBar(b)
	}
	return out, nil
}

func (r *Repository) LastBarBefore(poolID int64, ts time.Time) (repository.Bar, bool, error) {
	var bar Bar1m
	result := r.dbCon.Model(&Bar1m{}).
		Where("pool_id = ? AND bucket_start < ?", poolID, ts.Unix()).
		Order("bucket_start DESC").
		Limit(1).
		Find(&bar)
	if result.Error != nil {
		return repository.Bar{}, false, fmt.Errorf("last bar before: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.Bar{}, false, nil
	}
	return toBar(bar), true, nil
}

func (r *Repository) LatestExchangeRate() (float64, bool, error) {
	var rate ExchangeRate
	result := r.dbCon.Model(&ExchangeRate{}).Order("ts DESC").Limit(1).Find(&rate)
	if result.Error != nil {
		return 0, false, fmt.Errorf("latest exchange rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	return rate.ZigUSD, true, nil
}

func (r *Repository) ExchangeRateAtOrBefore(ts time.Time) (float64, bool, error) {
	var rate ExchangeRate
	result := r.dbCon.Model(&ExchangeRate{}).
		Where("ts <= ?", ts.Unix()).
		Order("ts DESC").
		Limit(1).
		Find(&rate)
	if result.Error != nil {
		return 0, false, fmt.Errorf("exchange rate at: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	return rate.ZigUSD, true, nil
}

// TokenBucketStats reads one cell of the stats matrix; an absent cell is an
// all-zero bucket, not an error.
func (r *Repository) TokenBucketStats(tokenID int64, bucket time.Duration) (repository.BucketStats, error) {
	var stat TokenBucketStat
	result := r.dbCon.Model(&TokenBucketStat{}).
		Where("token_id = ? AND bucket_minutes = ?", tokenID, int64(bucket.Minutes())).
		Limit(1).
		Find(&stat)
	if result.Error != nil {
		return repository.BucketStats{}, fmt.Errorf("bucket stats: %w", result.Error)
	}
	return repository.BucketStats{
		VolumeBuyZig:  stat.VolumeBuyZig,
		VolumeSellZig: stat.VolumeSellZig,
		TxBuy:         stat.TxBuy,
		TxSell:        stat.TxSell,
		UniqueTraders: stat.UniqueTraders,
		TVLZig:        stat.TVLZig,
	}, nil
}

func (r *Repository) Supply(tokenID int64) (repository.SupplyInfo, bool, error) {
	var supply TokenSupply
	result := r.dbCon.Model(&TokenSupply{}).Limit(1).Find(&supply, "token_id = ?", tokenID)
	if result.Error != nil {
		return repository.SupplyInfo{}, false, fmt.Errorf("supply: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.SupplyInfo{}, false, nil
	}
	return repository.SupplyInfo{
		CirculatingBase: parseBaseAmount(strOrNil(supply.CirculatingBase)),
		TotalBase:       parseBaseAmount(strOrNil(supply.TotalBase)),
		MaxBase:         parseBaseAmount(strOrNil(supply.MaxBase)),
	}, true, nil
}

func (r *Repository) HolderCount(tokenID int64) (int64, error) {
	var holders TokenHolders
	result := r.dbCon.Model(&TokenHolders{}).Limit(1).Find(&holders, "token_id = ?", tokenID)
	if result.Error != nil {
		return 0, fmt.Errorf("holder count: %w", result.Error)
	}
	return holders.Holders, nil
}

func (r *Repository) Security(tokenID int64) (repository.SecurityInfo, bool, error) {
	var security TokenSecurity
	result := r.dbCon.Model(&TokenSecurity{}).Limit(1).Find(&security, "token_id = ?", tokenID)
	if result.Error != nil {
		return repository.SecurityInfo{}, false, fmt.Errorf("security: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.SecurityInfo{}, false, nil
	}
	return repository.SecurityInfo{
		MintRevoked:   security.MintRevoked,
		FreezeRevoked: security.FreezeRevoked,
		LPBurnedPct:   security.LPBurnedPct,
		Top10Pct:      security.Top10Pct,
	}, true, nil
}

func (r *Repository) ExternalStats(tokenID int64) (repository.ExternalStats, bool, error) {
	var stats TokenExternalStat
	result := r.dbCon.Model(&TokenExternalStat{}).Limit(1).Find(&stats, "token_id = ?", tokenID)
	if result.Error != nil {
		return repository.ExternalStats{}, false, fmt.Errorf("external stats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ExternalStats{}, false, nil
	}
	return repository.ExternalStats{
		PriceUSD:     stats.PriceUSD,
		MarketCapUSD: stats.MarketCapUSD,
		Volume24hUSD: stats.Volume24hUSD,
		UpdatedAt:    stats.UpdatedAt,
	}, true, nil
}

type tradeRowScan struct {
	TradeID          int64
	ExecutedAt       int64
	Direction        string
	PairContract     string
	PoolID           int64
	IsUzigQuote      bool
	OfferDenom       string
	OfferAmountBase  *string
	AskDenom         string
	ReturnAmountBase *string
	OfferExponent    *int32
	AskExponent      *int32
	QuoteDenom       string
	QuotePriceInZig  *float64
	RateAtTrade      *float64
	Signer           string
	TxHash           string
}

const tradeRowSelect = `
SELECT t.trade_id, t.executed_at, t.direction, t.pair_contract, t.pool_id, p.is_uzig_quote,
       t.offer_denom, t.offer_amount_base, t.ask_denom, t.return_amount_base,
       ot.exponent AS offer_exponent, at2.exponent AS ask_exponent, qt.denom AS quote_denom,
       (SELECT pr.price_in_zig FROM prices pr
         WHERE pr.token_id = p.quote_token_id AND pr.pool_id = p.pool_id
         ORDER BY pr.updated_at DESC LIMIT 1) AS quote_price_in_zig,
       (SELECT er.zig_usd FROM exchange_rates er
         WHERE er.ts <= t.executed_at
         ORDER BY er.ts DESC LIMIT 1) AS rate_at_trade,
       t.signer, t.tx_hash
FROM trades t
JOIN pools p ON p.pool_id = t.pool_id
JOIN tokens qt ON qt.token_id = p.quote_token_id
LEFT JOIN tokens ot ON ot.denom = t.offer_denom
LEFT JOIN tokens at2 ON at2.denom = t.ask_denom
`

// tradeConditions translates structured predicates into parameterized WHERE
// fragments. Caller values only ever travel through the argument list.
func tradeConditions(predicates []repository.TradePredicate) (string, []any) {
	conds := make([]string, 0, len(predicates))
	args := make([]any, 0, len(predicates))
	for _, predicate := range predicates {
		switch p := predicate.(type) {
		case repository.DirectionIs:
			conds = append(conds, "t.direction = ?")
			args = append(args, string(p))
		case repository.SignerIs:
			conds = append(conds, "t.signer = ?")
			args = append(args, string(p))
		case repository.PairContractIs:
			conds = append(conds, "t.pair_contract = ?")
			args = append(args, string(p))
		case repository.TokenIs:
			conds = append(conds, "(p.base_token_id = ? OR p.quote_token_id = ?)")
			args = append(args, int64(p), int64(p))
		case repository.MinValueZig:
			conds = append(conds, "t.value_zig >= ?")
			args = append(args, float64(p))
		case repository.MaxValueZig:
			conds = append(conds, "t.value_zig <= ?")
			args = append(args, float64(p))
		case repository.Since:
			conds = append(conds, "t.executed_at >= ?")
			args = append(args, time.Time(p).Unix())
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) Trades(filter repository.TradeFilter) ([]repository.TradeRow, error) {
	where, args := tradeConditions(filter.Predicates)

	query := tradeRowSelect + where + " ORDER BY t.executed_at DESC"
	if filter.Limit > 0 || filter.Offset > 0 {
		// OFFSET needs an explicit LIMIT on sqlite
		limit := filter.Limit
		if limit <= 0 {
			limit = math.MaxInt32
		}
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	var scans []tradeRowScan
	result := r.dbCon.Raw(query, args...).Scan(&scans)
	if result.Error != nil {
		return nil, fmt.Errorf("trades: %w", result.Error)
	}

	rows := make([]repository.TradeRow, len(scans))
	for i, scan := range scans {
		rows[i] = repository.TradeRow{
			TradeID:          scan.TradeID,
			Direction:        repository.Direction(scan.Direction),
			PairContract:     scan.PairContract,
			PoolID:           scan.PoolID,
			IsUzigQuote:      scan.IsUzigQuote,
			OfferDenom:       scan.OfferDenom,
			OfferAmountBase:  parseBaseAmount(scan.OfferAmountBase),
			AskDenom:         scan.AskDenom,
			ReturnAmountBase: parseBaseAmount(scan.ReturnAmountBase),
			OfferExponent:    scan.OfferExponent,
			AskExponent:      scan.AskExponent,
			QuoteDenom:       scan.QuoteDenom,
			QuotePriceInZig:  scan.QuotePriceInZig,
			RateAtTrade:      scan.RateAtTrade,
			Signer:           scan.Signer,
			TxHash:           scan.TxHash,
			CreatedAt:        time.Unix(scan.ExecutedAt, 0).UTC(),
		}
	}
	return rows, nil
}
