package rounding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-moneta"
)

// Round rounds d to scale digits after the decimal point using mode.
func Round(d decimal.Decimal, scale int, mode moneta.RoundingMode) decimal.Decimal {
	places := int32(scale)
	switch mode {
	case moneta.HalfUp:
		return d.Round(places)
	case moneta.HalfDown:
		truncated := d.Truncate(places)
		half := decimal.New(5, -(places + 1))
		if d.Sub(truncated).Abs().GreaterThan(half) {
			return d.RoundUp(places)
		}
		return truncated
	case moneta.Up:
		return d.RoundUp(places)
	case moneta.Down:
		return d.RoundDown(places)
	case moneta.Ceiling:
		return d.RoundCeil(places)
	case moneta.Floor:
		return d.RoundFloor(places)
	default:
		return d.RoundBank(places)
	}
}

// RoundToIncrement rounds d to a multiple of increment units at scale, e.g.
// scale 2 and increment 5 rounds to multiples of 0.05.
func RoundToIncrement(d decimal.Decimal, scale, increment int, mode moneta.RoundingMode) decimal.Decimal {
	if increment <= 1 {
		return Round(d, scale, mode)
	}
	step := decimal.New(int64(increment), -int32(scale))
	return Round(d.Div(step), 0, mode).Mul(step)
}

// scaleRounding rounds to a fixed scale, optionally to a multiple of increment.
type scaleRounding struct {
	scale     int
	increment int
	mode      moneta.RoundingMode
	ctx       moneta.RoundingContext
}

// NewScaleRounding returns a rounding of provider to scale digits.
func NewScaleRounding(provider, name string, scale int, mode moneta.RoundingMode) moneta.Rounding {
	return NewIncrementRounding(provider, name, scale, 1, mode)
}

// NewIncrementRounding returns a rounding of provider to multiples of
// increment at scale, as used for cash amounts.
func NewIncrementRounding(provider, name string, scale, increment int, mode moneta.RoundingMode) moneta.Rounding {
	if increment < 1 {
		increment = 1
	}
	ctx := moneta.NewRoundingContextBuilder(provider, name).
		SetKey(moneta.KeyScale, scale).
		SetKey(KeyIncrement, increment).
		Set(mode).
		Build()
	return &scaleRounding{scale: scale, increment: increment, mode: mode, ctx: ctx}
}

func (r *scaleRounding) Apply(amount moneta.MonetaryAmount) (moneta.MonetaryAmount, error) {
	if amount == nil {
		return nil, fmt.Errorf("round nil amount: %w", moneta.ErrInvalidArgument)
	}
	return amount.WithNumber(RoundToIncrement(amount.Number(), r.scale, r.increment, r.mode))
}

func (r *scaleRounding) Context() moneta.RoundingContext {
	return r.ctx
}

func (r *scaleRounding) String() string {
	return fmt.Sprintf("Rounding[%v scale=%d increment=%d %v]", r.ctx.RoundingName(), r.scale, r.increment, r.mode)
}
