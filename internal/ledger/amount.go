// internal/ledger/amount.go
package ledger

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// maxDecimals is the largest exponent for which 10^decimals fits in a uint64.
const maxDecimals = 19

// UnitsPerToken returns 10^decimals, the raw amount of one whole token.
func UnitsPerToken(decimals uint8) (uint64, error) {
	if decimals > maxDecimals {
		return 0, fmt.Errorf("%w: 10^%d", ErrOverflow, decimals)
	}
	units := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		units *= 10
	}
	return units, nil
}

// ScaleTokens converts whole tokens to raw units, failing on overflow.
func ScaleTokens(tokens uint64, decimals uint8) (uint64, error) {
	units, err := UnitsPerToken(decimals)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(tokens, units)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d tokens at %d decimals", ErrOverflow, tokens, decimals)
	}
	return lo, nil
}

// ToUIAmount renders a raw amount as a decimal number of whole tokens.
func ToUIAmount(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// FromUIAmount converts a decimal number of whole tokens back to raw units. Fractions
// finer than the mint's decimals are rejected rather than rounded.
func FromUIAmount(ui decimal.Decimal, decimals uint8) (uint64, error) {
	if ui.Sign() < 0 {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, ui)
	}
	shifted := ui.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, ui, decimals)
	}
	raw := shifted.BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, ui)
	}
	return raw.Uint64(), nil
}
