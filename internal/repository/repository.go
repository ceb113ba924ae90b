package repository

import (
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

var _ repository.Repository = (*Repository)(nil)

type Repository struct {
	logger *slog.Logger
	dbCon  *gorm.DB
}

func New(db *gorm.DB, logger *slog.Logger) (*Repository, error) {
	ret := &Repository{
		logger: logger,
		dbCon:  db,
	}

	// Create tables for data structures (if table already exists it will not be overwritten)
	models := []any{
		&Token{},
		&Pool{},
		&PoolState{},
		&PoolStat{},
		&Price{},
		&Trade{},
		&Bar1m{},
		&ExchangeRate{},
		&TokenBucketStat{},
		&TokenSupply{},
		&TokenHolders{},
		&TokenSecurity{},
		&TokenExternalStat{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("table migrate error for %T: %w", model, err)
		}
	}
	return ret, nil
}

func (r *Repository) Close() error {
	return nil
}
