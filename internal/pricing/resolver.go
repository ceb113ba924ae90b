package pricing

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/zigchain/dex-analytics/pkg/repository"
)

var nativeAliases = []string{NativeDenom, NativeSymbol}

// ResolveToken resolves a user-supplied identifier to a canonical token
// record. A missing token reports ErrTokenNotFound; callers translate it to
// an error-shaped response, never a retry.
func (e *Engine) ResolveToken(identifier string) (repository.Token, error) {
	token, found, err := e.repo.ResolveToken(identifier)
	if err != nil {
		return repository.Token{}, fmt.Errorf("resolve %q: %w", identifier, err)
	}
	if !found {
		return repository.Token{}, fmt.Errorf("%q: %w", identifier, ErrTokenNotFound)
	}
	return token, nil
}

// IsNativeCurrency reports whether the token is the chain's native currency.
func IsNativeCurrency(token repository.Token) bool {
	return slices.Contains(nativeAliases, strings.ToLower(token.Denom)) ||
		slices.Contains(nativeAliases, strings.ToLower(token.Symbol))
}

// DominantSide decides which leg of its pools a token conventionally
// occupies. An explicit request is honored as-is. On "auto" a token with any
// native-quoted pool is "base"; otherwise a token appearing as the quote
// asset of some pool is "quote"; failing both, "base".
func (e *Engine) DominantSide(tokenID int64, requested repository.Side) (repository.Side, error) {
	switch requested {
	case repository.SideBase, repository.SideQuote:
		return requested, nil
	}

	basePools, err := e.repo.ListPools(tokenID, repository.SideBase)
	if err != nil {
		return repository.SideBase, fmt.Errorf("list base pools for token %d: %w", tokenID, err)
	}
	if len(basePools) > 0 {
		return repository.SideBase, nil
	}

	quotePools, err := e.repo.ListPools(tokenID, repository.SideQuote)
	if err != nil {
		return repository.SideBase, fmt.Errorf("list quote pools for token %d: %w", tokenID, err)
	}
	if len(quotePools) > 0 {
		return repository.SideQuote, nil
	}

	return repository.SideBase, nil
}
