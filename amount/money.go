package amount

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"

	"go-moneta"
)

// DefaultMoneyPrecision is the precision of the default Money context.
const DefaultMoneyPrecision = 256

// MoneyType is the amount type of Money.
var MoneyType = reflect.TypeFor[Money]()

// Money is an amount backed by an arbitrary precision decimal, limited by
// the precision and max scale of its context.
type Money struct {
	currency moneta.CurrencyUnit
	number   decimal.Decimal
	ctx      moneta.MonetaryContext
}

// MoneyContext returns a Money context with precision and maxScale; 0 and -1
// mean unlimited.
func MoneyContext(precision, maxScale int) moneta.MonetaryContext {
	return moneta.NewMonetaryContextBuilder(MoneyType).
		SetPrecision(precision).
		SetMaxScale(maxScale).
		SetRoundingMode(moneta.HalfEven).
		Build()
}

// NewMoney returns number units of currency, validated against ctx.
func NewMoney(currency moneta.CurrencyUnit, number decimal.Decimal, ctx moneta.MonetaryContext) (Money, error) {
	if currency == nil {
		return Money{}, fmt.Errorf("money without currency: %w", moneta.ErrInvalidArgument)
	}
	if err := fits(number, ctx); err != nil {
		return Money{}, fmt.Errorf("money [%v %v]: %w", currency.CurrencyCode(), number, err)
	}
	return Money{currency: currency, number: number, ctx: ctx}, nil
}

func (m Money) Currency() moneta.CurrencyUnit   { return m.currency }
func (m Money) Number() decimal.Decimal         { return m.number }
func (m Money) Context() moneta.MonetaryContext { return m.ctx }

func (m Money) WithNumber(number decimal.Decimal) (moneta.MonetaryAmount, error) {
	return NewMoney(m.currency, number, m.ctx)
}

func (m Money) String() string {
	return fmt.Sprintf("%v %v", m.currency.CurrencyCode(), m.number)
}

// fits reports whether number respects the precision and max scale of ctx.
func fits(number decimal.Decimal, ctx moneta.MonetaryContext) error {
	scale := scaleOf(number)
	if limit := ctx.MaxScale(); limit >= 0 && scale > limit {
		return fmt.Errorf("scale %d exceeds %d: %w", scale, limit, moneta.ErrInvalidArgument)
	}
	if limit := ctx.Precision(); limit > 0 {
		if p := precisionOf(number); p > limit {
			return fmt.Errorf("precision %d exceeds %d: %w", p, limit, moneta.ErrInvalidArgument)
		}
	}
	return nil
}

// scaleOf returns the number of significant digits after the decimal point.
func scaleOf(d decimal.Decimal) int {
	digits := strings.TrimPrefix(d.Coefficient().String(), "-")
	if digits == "0" {
		return 0
	}
	zeros := len(digits) - len(strings.TrimRight(digits, "0"))
	return max(0, -(int(d.Exponent()) + zeros))
}

// precisionOf returns the number of significant digits of d.
func precisionOf(d decimal.Decimal) int {
	digits := d.Abs().Shift(int32(scaleOf(d))).BigInt().String()
	return len(digits)
}
