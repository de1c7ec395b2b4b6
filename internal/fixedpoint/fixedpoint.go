package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

const (
	// RateScale is the 1e6 base for concentration, fee rate and spread.
	RateScale = 1_000_000
	// PriceScale is the 1e18 base for price multipliers.
	PriceScale = 1_000_000_000_000_000_000
)

var (
	// ErrOverflow reports a product that does not fit in 256 bits.
	ErrOverflow = errors.New("fixedpoint: overflow")
	// ErrDivisionByZero reports a zero denominator.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")

	rateScale  = uint256.NewInt(RateScale)
	priceScale = uint256.NewInt(PriceScale)
)

// MulDiv returns floor(a*b/d) with a full-width intermediate product.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Effective rescales a native amount into the shared pricing unit:
// floor(amount*mult/1e18).
func Effective(amount, mult *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, mult, priceScale)
}

// Reverse converts an effective amount back into native units:
// floor(amount*1e18/mult).
func Reverse(amount, mult *uint256.Int) (*uint256.Int, error) {
	if mult.IsZero() {
		return nil, ErrDivisionByZero
	}
	return MulDiv(amount, priceScale, mult)
}

// AdjustIn shrinks an effective input by the concentration scalar before it
// meets the invariant curve: floor(amount*1e6/concentration).
func AdjustIn(amount, concentration *uint256.Int) (*uint256.Int, error) {
	if concentration.IsZero() {
		return nil, ErrDivisionByZero
	}
	return MulDiv(amount, rateScale, concentration)
}

// AdjustOut inverse-scales an effective curve output back through the
// concentration scalar: floor(amount*concentration/1e6).
func AdjustOut(amount, concentration *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, concentration, rateScale)
}

// ApplyRate keeps the (1e6-rate) remainder of an amount, floor-rounded:
// floor(amount*(1e6-rate)/1e6). The rate must not exceed 1e6.
func ApplyRate(amount *uint256.Int, rate uint64) (*uint256.Int, error) {
	if rate > RateScale {
		return nil, ErrOverflow
	}
	keep := uint256.NewInt(RateScale - rate)
	return MulDiv(amount, keep, rateScale)
}

// Product returns a*b, failing on 256-bit overflow. Used for the freshly
// derived invariant.
func Product(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}
