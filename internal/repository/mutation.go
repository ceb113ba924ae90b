package repository

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Writes are upserts keyed on each model's natural identity so the ingester
// can replay events without duplicating rows.

func (r *Repository) SaveToken(token Token) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "denom"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "symbol", "name", "exponent",
			"total_supply_base", "max_supply_base", "is_stable",
			"image_url", "website", "telegram", "twitter",
		}),
	}).Create(&token)
	if result.Error != nil {
		return fmt.Errorf("save token: %w", result.Error)
	}
	return nil
}

func (r *Repository) SavePool(pool Pool) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pair_contract"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "base_token_id", "quote_token_id", "pair_type", "is_uzig_quote",
		}),
	}).Create(&pool)
	if result.Error != nil {
		return fmt.Errorf("save pool: %w", result.Error)
	}
	return nil
}

func (r *Repository) SavePoolState(state PoolState) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pool_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "reserve_base_base", "reserve_quote_base",
		}),
	}).Create(&state)
	if result.Error != nil {
		return fmt.Errorf("save pool state: %w", result.Error)
	}
	return nil
}

func (r *Repository) SavePoolStat(stat PoolStat) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pool_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "tvl_zig"}),
	}).Create(&stat)
	if result.Error != nil {
		return fmt.Errorf("save pool stat: %w", result.Error)
	}
	return nil
}

func (r *Repository) SavePrice(price Price) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}, {Name: "pool_id"}, {Name: "updated_at"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_in_zig"}),
	}).Create(&price)
	if result.Error != nil {
		return fmt.Errorf("save price: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTrade(trade Trade) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_id"}},
		DoNothing: true,
	}).Create(&trade)
	if result.Error != nil {
		return fmt.Errorf("save trade: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveBar(bar Bar1m) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pool_id"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume", "trade_count",
		}),
	}).Create(&bar)
	if result.Error != nil {
		return fmt.Errorf("save bar: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveExchangeRate(rate ExchangeRate) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ts"}},
		DoUpdates: clause.AssignmentColumns([]string{"zig_usd"}),
	}).Create(&rate)
	if result.Error != nil {
		return fmt.Errorf("save exchange rate: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTokenBucketStat(stat TokenBucketStat) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}, {Name: "bucket_minutes"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "volume_buy_zig", "volume_sell_zig",
			"tx_buy", "tx_sell", "unique_traders", "tvl_zig",
		}),
	}).Create(&stat)
	if result.Error != nil {
		return fmt.Errorf("save token bucket stat: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTokenSupply(supply TokenSupply) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "circulating_base", "total_base", "max_base",
		}),
	}).Create(&supply)
	if result.Error != nil {
		return fmt.Errorf("save token supply: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTokenHolders(holders TokenHolders) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "holders"}),
	}).Create(&holders)
	if result.Error != nil {
		return fmt.Errorf("save token holders: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTokenSecurity(security TokenSecurity) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "mint_revoked", "freeze_revoked", "lp_burned_pct", "top10_pct",
		}),
	}).Create(&security)
	if result.Error != nil {
		return fmt.Errorf("save token security: %w", result.Error)
	}
	return nil
}

func (r *Repository) SaveTokenExternalStat(stats TokenExternalStat) error {
	result := r.dbCon.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "price_usd", "market_cap_usd", "volume24h_usd",
		}),
	}).Create(&stats)
	if result.Error != nil {
		return fmt.Errorf("save token external stat: %w", result.Error)
	}
	return nil
}
