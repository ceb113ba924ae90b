package pricing

import (
	"math"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Scale converts a base-unit integer amount to a display amount by dividing
// by 10^exponent. A nil amount yields nil. A nil or negative exponent falls
// back to the native currency convention of 6 decimal places.
func Scale(amount sdkmath.Int, exponent *int32) *float64 {
	if amount.IsNil() {
		return nil
	}
	e := NativeExponent
	if exponent != nil && *exponent >= 0 {
		e = *exponent
	}
	num := new(big.Float).SetInt(amount.BigInt())
	den := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e)), nil))
	v, _ := new(big.Float).Quo(num, den).Float64()
	return &v
}

// ScaleValue is Scale for amounts already held as floats.
func ScaleValue(amount *float64, exponent *int32) *float64 {
	if amount == nil {
		return nil
	}
	e := NativeExponent
	if exponent != nil && *exponent >= 0 {
		e = *exponent
	}
	v := *amount / math.Pow10(int(e))
	return &v
}

// ToUSD converts a native-currency value to USD through the exchange rate.
// Nil input or a non-finite rate yields nil.
func ToUSD(native *float64, zigUSD float64) *float64 {
	if native == nil {
		return nil
	}
	if math.IsNaN(zigUSD) || math.IsInf(zigUSD, 0) {
		return nil
	}
	v := *native * zigUSD
	return &v
}

// mulPtr multiplies a nullable value by a factor, preserving nil.
func mulPtr(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	r := *v * factor
	return &r
}

// floatPtr returns a pointer to v.
func floatPtr(v float64) *float64 {
	return &v
}
