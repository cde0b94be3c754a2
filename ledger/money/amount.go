// Package money implements exact non-negative monetary amounts tagged with a denomination
package money

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/lunfardo314/easyiou/lazyslice"
	"github.com/shopspring/decimal"
)

type (
	// Denomination is a currency code, for example "USD"
	Denomination string

	// Amount is a quantity of minor units of the denomination. Immutable, operations return new values
	Amount struct {
		Quantity     uint64
		Denomination Denomination
	}
)

var (
	ErrDenominationMismatch = errors.New("denomination mismatch")
	ErrUnderflow            = errors.New("amount underflow")
	ErrOverflow             = errors.New("amount overflow")
	ErrWrongFormat          = errors.New("wrong amount format")
)

// minorUnits is number of fractional digits of the denomination. Default is 2
var minorUnits = map[Denomination]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
	"BTC": 8,
}

func MinorUnits(d Denomination) int32 {
	if ret, ok := minorUnits[d]; ok {
		return ret
	}
	return 2
}

func NewAmount(quantity uint64, d Denomination) Amount {
	return Amount{Quantity: quantity, Denomination: d}
}

func Zero(d Denomination) Amount {
	return Amount{Denomination: d}
}

const (
	maxParseExponent = 20
	minParseExponent = -40
)

// maxDecimal is the largest amount of the denomination in major units
func maxDecimal(d Denomination) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), -MinorUnits(d))
}

// ParseAmount parses decimal representation of the amount in major units, e.g. "12.50"
func ParseAmount(s string, d Denomination) (Amount, error) {
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: '%s': %v", ErrWrongFormat, s, err)
	}
	if dec.IsNegative() {
		return Amount{}, fmt.Errorf("%w: '%s' is negative", ErrWrongFormat, s)
	}
	if dec.IsZero() {
		return Zero(d), nil
	}
	// exponent is bounded before any rescaling, which materializes 10^exponent
	switch {
	case dec.Exponent() > maxParseExponent:
		return Amount{}, fmt.Errorf("%w: '%s' does not fit uint64", ErrOverflow, s)
	case dec.Exponent() < minParseExponent:
		return Amount{}, fmt.Errorf("%w: '%s' has too many fractional digits", ErrWrongFormat, s)
	}
	if dec.GreaterThan(maxDecimal(d)) {
		return Amount{}, fmt.Errorf("%w: '%s' does not fit uint64", ErrOverflow, s)
	}
	minor := dec.Shift(MinorUnits(d))
	if !minor.IsInteger() {
		return Amount{}, fmt.Errorf("%w: '%s' has more than %d fractional digits for %s",
			ErrWrongFormat, s, MinorUnits(d), d)
	}
	q := minor.BigInt()
	if !q.IsUint64() {
		return Amount{}, fmt.Errorf("%w: '%s' does not fit uint64", ErrOverflow, s)
	}
	return NewAmount(q.Uint64(), d), nil
}

// Bytes is 2-element array of big-endian quantity and denomination
func (a Amount) Bytes() []byte {
	var q [8]byte
	binary.BigEndian.PutUint64(q[:], a.Quantity)
	return lazyslice.MakeArray(q[:], string(a.Denomination)).Bytes()
}

func AmountFromBytes(data []byte) (Amount, error) {
	arr, err := lazyslice.ParseArray(data, 2)
	if err != nil {
		return Amount{}, err
	}
	if arr.NumElements() != 2 || len(arr.At(0)) != 8 {
		return Amount{}, fmt.Errorf("%w: wrong amount bytes", ErrWrongFormat)
	}
	return NewAmount(binary.BigEndian.Uint64(arr.At(0)), Denomination(arr.At(1))), nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(a.Quantity), -MinorUnits(a.Denomination))
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Decimal().StringFixed(MinorUnits(a.Denomination)), a.Denomination)
}

func (a Amount) IsZero() bool {
	return a.Quantity == 0
}

func (a Amount) SameDenomination(b Amount) bool {
	return a.Denomination == b.Denomination
}

// Equal is structural equality. Amounts of different denominations are never equal
func (a Amount) Equal(b Amount) bool {
	return a == b
}

func (a Amount) mustSameDenomination(b Amount) error {
	if !a.SameDenomination(b) {
		return fmt.Errorf("%w: %s vs %s", ErrDenominationMismatch, a.Denomination, b.Denomination)
	}
	return nil
}

func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.mustSameDenomination(b); err != nil {
		return Amount{}, err
	}
	if b.Quantity > math.MaxUint64-a.Quantity {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return NewAmount(a.Quantity+b.Quantity, a.Denomination), nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.mustSameDenomination(b); err != nil {
		return Amount{}, err
	}
	if b.Quantity > a.Quantity {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrUnderflow, a, b)
	}
	return NewAmount(a.Quantity-b.Quantity, a.Denomination), nil
}

// Cmp returns -1, 0 or +1
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.mustSameDenomination(b); err != nil {
		return 0, err
	}
	switch {
	case a.Quantity < b.Quantity:
		return -1, nil
	case a.Quantity > b.Quantity:
		return 1, nil
	}
	return 0, nil
}
