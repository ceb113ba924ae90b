package repository

import "time"

// TradePredicate is a structured trade list filter. Each variant is translated
// by the repository into a parameterized condition; caller-supplied values are
// never concatenated into query text.
type TradePredicate interface {
	isTradePredicate()
}

// DirectionIs keeps trades with the given direction.
type DirectionIs Direction

// SignerIs keeps trades signed by the given address.
type SignerIs string

// PairContractIs keeps trades executed on the given pair contract.
type PairContractIs string

// TokenIs keeps trades whose pool has the given token on either side.
type TokenIs int64

// MinValueZig keeps trades whose recorded ZIG value is at least the bound.
type MinValueZig float64

// MaxValueZig keeps trades whose recorded ZIG value is at most the bound.
type MaxValueZig float64

// Since keeps trades executed at or after the given time.
type Since time.Time

func (DirectionIs) isTradePredicate()    {}
func (SignerIs) isTradePredicate()       {}
func (PairContractIs) isTradePredicate() {}
func (TokenIs) isTradePredicate()        {}
func (MinValueZig) isTradePredicate()    {}
func (MaxValueZig) isTradePredicate()    {}
func (Since) isTradePredicate()          {}

// TradeFilter bounds and filters a trade listing query.
type TradeFilter struct {
	Predicates []TradePredicate
	Limit      int
	Offset     int
}
