package moneta

import (
	"fmt"

	"go-moneta/meta"
)

// Attribute keys of roundings.
const (
	KeyRoundingName = "roundingName"
	KeyScale        = "scale"
	KeyCashRounding = "cashRounding"
)

// RoundingMode how a number is rounded to a scale.
type RoundingMode int

const (
	HalfEven RoundingMode = iota
	HalfUp
	HalfDown
	Up
	Down
	Ceiling
	Floor
)

var roundingModeNames = [...]string{"HALF_EVEN", "HALF_UP", "HALF_DOWN", "UP", "DOWN", "CEILING", "FLOOR"}

func (m RoundingMode) String() string {
	if m < 0 || int(m) >= len(roundingModeNames) {
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
	return roundingModeNames[m]
}

// ParseRoundingMode parses a mode name such as "HALF_EVEN".
func ParseRoundingMode(s string) (RoundingMode, error) {
	for i, name := range roundingModeNames {
		if name == s {
			return RoundingMode(i), nil
		}
	}
	return 0, fmt.Errorf("rounding mode [%q]: %w", s, ErrInvalidArgument)
}

// Rounding rounds monetary amounts.
type Rounding interface {
	Apply(amount MonetaryAmount) (MonetaryAmount, error)
	Context() RoundingContext
}

// RoundingContext describes a rounding: its provider, name and parameters.
type RoundingContext struct {
	meta.Context
}

// RoundingName returns the rounding's name.
func (c RoundingContext) RoundingName() string {
	return meta.GetOr(c.Context, KeyRoundingName, "")
}

// RoundingContextBuilder builds a RoundingContext.
type RoundingContextBuilder struct {
	attrs[*RoundingContextBuilder]
}

// NewRoundingContextBuilder returns a builder for a rounding of provider named roundingName.
func NewRoundingContextBuilder(provider, roundingName string) *RoundingContextBuilder {
	b := &RoundingContextBuilder{}
	b.b = meta.NewBuilder().SetProviderName(provider).SetKey(KeyRoundingName, roundingName)
	b.self = b
	return b
}

// Build returns the context.
func (b *RoundingContextBuilder) Build() RoundingContext {
	return RoundingContext{Context: b.b.Build()}
}

// RoundingQuery selects roundings by name, currency or scale.
type RoundingQuery struct {
	meta.Query
}

// RoundingName returns the requested rounding name.
func (q RoundingQuery) RoundingName() (string, bool) {
	name, ok := meta.GetKey[string](q.Context, KeyRoundingName)
	return name, ok && name != ""
}

// Currency returns the currency the rounding is for.
func (q RoundingQuery) Currency() (CurrencyUnit, bool) {
	c, ok := meta.Get[CurrencyUnit](q.Context)
	return c, ok && c != nil
}

// Scale returns the requested scale.
func (q RoundingQuery) Scale() (int, bool) {
	return meta.GetKey[int](q.Context, KeyScale)
}

// RoundingMode returns the requested rounding mode.
func (q RoundingQuery) RoundingMode() (RoundingMode, bool) {
	return meta.Get[RoundingMode](q.Context)
}

// CashRounding reports whether the cash (minimal coin) rounding is requested.
func (q RoundingQuery) CashRounding() bool {
	return meta.GetOr(q.Context, KeyCashRounding, false)
}

// ToBuilder returns a builder seeded with q.
func (q RoundingQuery) ToBuilder() *RoundingQueryBuilder {
	b := NewRoundingQueryBuilder()
	b.ImportContext(q.Context, true)
	return b
}

func (q RoundingQuery) String() string {
	return "RoundingQuery" + q.Context.String()
}

// RoundingQueryBuilder builds a RoundingQuery.
type RoundingQueryBuilder struct {
	queryAttrs[*RoundingQueryBuilder]
}

// NewRoundingQueryBuilder returns an empty builder.
func NewRoundingQueryBuilder() *RoundingQueryBuilder {
	b := &RoundingQueryBuilder{}
	b.init(b)
	return b
}

// SetRoundingName sets the rounding name.
func (b *RoundingQueryBuilder) SetRoundingName(name string) *RoundingQueryBuilder {
	return b.SetKey(KeyRoundingName, name)
}

// SetCurrency sets the currency to round for.
func (b *RoundingQueryBuilder) SetCurrency(c CurrencyUnit) *RoundingQueryBuilder {
	return b.SetTyped(typeOfCurrencyUnit, c, typeOfCurrencyUnit)
}

// SetScale sets the target scale.
func (b *RoundingQueryBuilder) SetScale(scale int) *RoundingQueryBuilder {
	return b.SetKey(KeyScale, scale)
}

// SetRoundingMode sets the rounding mode.
func (b *RoundingQueryBuilder) SetRoundingMode(m RoundingMode) *RoundingQueryBuilder {
	return b.Set(m)
}

// SetCashRounding requests the cash rounding of the currency.
func (b *RoundingQueryBuilder) SetCashRounding(cash bool) *RoundingQueryBuilder {
	return b.SetKey(KeyCashRounding, cash)
}

// Build returns the query.
func (b *RoundingQueryBuilder) Build() RoundingQuery {
	return RoundingQuery{Query: b.query()}
}
