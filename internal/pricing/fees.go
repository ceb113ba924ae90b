package pricing

import (
	"strconv"
	"strings"
)

// DefaultFee is the swap fee assumed for unknown pair types (30 bps).
const DefaultFee = 0.003

// PairFee maps a pool's pair type to its swap fee rate. Plain "xyk" pools
// charge 1 bps, "concentrated" pools 100 bps, and "xyk_<n>"/"xyk-<n>" pools
// n bps. Anything else, including an empty pair type, gets the default.
func PairFee(pairType string) float64 {
	switch pairType {
	case "xyk":
		return 0.0001
	case "concentrated":
		return 0.01
	}
	if bps, ok := xykBasisPoints(pairType); ok {
		return float64(bps) / 10000
	}
	return DefaultFee
}

func xykBasisPoints(pairType string) (int64, bool) {
	rest, found := strings.CutPrefix(pairType, "xyk_")
	if !found {
		rest, found = strings.CutPrefix(pairType, "xyk-")
	}
	if !found || rest == "" {
		return 0, false
	}
	bps, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || bps < 0 {
		return 0, false
	}
	return bps, true
}
