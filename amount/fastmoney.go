package amount

import (
	"fmt"
	"math"
	"reflect"

	"github.com/shopspring/decimal"

	"go-moneta"
)

// FastMoney holds amounts as a count of 10^-5 units in an int64.
const (
	FastMoneyScale     = 5
	FastMoneyPrecision = 19
)

var (
	// FastMoneyType is the amount type of FastMoney.
	FastMoneyType = reflect.TypeFor[FastMoney]()

	fastMoneyContext = moneta.NewMonetaryContextBuilder(FastMoneyType).
				SetPrecision(FastMoneyPrecision).
				SetMaxScale(FastMoneyScale).
				SetFixedScale(true).
				SetRoundingMode(moneta.HalfEven).
				Build()

	minFastMoney = decimal.New(math.MinInt64, -FastMoneyScale)
	maxFastMoney = decimal.New(math.MaxInt64, -FastMoneyScale)
)

// FastMoney is a fixed scale amount of limited range.
type FastMoney struct {
	currency moneta.CurrencyUnit
	units    int64
}

// NewFastMoney returns number units of currency. number must have at most
// five fraction digits and fit the int64 range.
func NewFastMoney(currency moneta.CurrencyUnit, number decimal.Decimal) (FastMoney, error) {
	if currency == nil {
		return FastMoney{}, fmt.Errorf("fast money without currency: %w", moneta.ErrInvalidArgument)
	}
	if err := fits(number, fastMoneyContext); err != nil {
		return FastMoney{}, fmt.Errorf("fast money [%v %v]: %w", currency.CurrencyCode(), number, err)
	}
	if number.LessThan(minFastMoney) || number.GreaterThan(maxFastMoney) {
		return FastMoney{}, fmt.Errorf("fast money [%v %v] out of range: %w", currency.CurrencyCode(), number, moneta.ErrInvalidArgument)
	}
	return FastMoney{currency: currency, units: number.Shift(FastMoneyScale).IntPart()}, nil
}

func (m FastMoney) Currency() moneta.CurrencyUnit   { return m.currency }
func (m FastMoney) Number() decimal.Decimal         { return decimal.New(m.units, -FastMoneyScale) }
func (m FastMoney) Context() moneta.MonetaryContext { return fastMoneyContext }

func (m FastMoney) WithNumber(number decimal.Decimal) (moneta.MonetaryAmount, error) {
	return NewFastMoney(m.currency, number)
}

func (m FastMoney) String() string {
	return fmt.Sprintf("%v %v", m.currency.CurrencyCode(), m.Number().StringFixed(FastMoneyScale))
}
