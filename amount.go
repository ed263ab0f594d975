package moneta

import (
	"reflect"

	"github.com/shopspring/decimal"

	"go-moneta/meta"
)

// Attribute keys of monetary contexts.
const (
	KeyPrecision  = "precision"
	KeyMaxScale   = "maxScale"
	KeyFixedScale = "fixedScale"
	KeyAmountType = "amountType"
)

var typeOfType = reflect.TypeFor[reflect.Type]()

// MonetaryAmount a number of units of a currency.
type MonetaryAmount interface {
	Currency() CurrencyUnit
	Number() decimal.Decimal
	Context() MonetaryContext
	// WithNumber returns an amount of the same type, currency and context holding number.
	WithNumber(number decimal.Decimal) (MonetaryAmount, error)
}

// AmountFactory creates amounts of one implementation type.
type AmountFactory interface {
	AmountType() reflect.Type
	DefaultContext() MonetaryContext
	MaximalContext() MonetaryContext
	Create(currency CurrencyUnit, number decimal.Decimal) (MonetaryAmount, error)
}

// MonetaryContext describes the numeric capabilities of an amount type.
// Precision 0 means unlimited, max scale -1 means unlimited.
type MonetaryContext struct {
	meta.Context
}

// Precision returns the maximal number of significant digits, 0 for unlimited.
func (c MonetaryContext) Precision() int {
	return meta.GetOr(c.Context, KeyPrecision, 0)
}

// MaxScale returns the maximal scale, -1 for unlimited.
func (c MonetaryContext) MaxScale() int {
	return meta.GetOr(c.Context, KeyMaxScale, -1)
}

// FixedScale reports whether every amount is held at exactly MaxScale.
func (c MonetaryContext) FixedScale() bool {
	return meta.GetOr(c.Context, KeyFixedScale, false)
}

// AmountType returns the amount implementation type.
func (c MonetaryContext) AmountType() reflect.Type {
	t, _ := meta.GetKey[reflect.Type](c.Context, KeyAmountType)
	return t
}

// RoundingMode returns the rounding mode used for arithmetic results.
func (c MonetaryContext) RoundingMode() RoundingMode {
	return meta.GetOr(c.Context, reflect.TypeFor[RoundingMode](), HalfEven)
}

// ToBuilder returns a builder seeded with c.
func (c MonetaryContext) ToBuilder() *MonetaryContextBuilder {
	b := NewMonetaryContextBuilder(c.AmountType())
	b.ImportContext(c.Context, true)
	return b
}

// MonetaryContextBuilder builds a MonetaryContext.
type MonetaryContextBuilder struct {
	attrs[*MonetaryContextBuilder]
}

// NewMonetaryContextBuilder returns a builder for a context of amountType.
func NewMonetaryContextBuilder(amountType reflect.Type) *MonetaryContextBuilder {
	b := &MonetaryContextBuilder{}
	b.b = meta.NewBuilder().SetTyped(KeyAmountType, amountType, typeOfType)
	b.self = b
	return b
}

// SetPrecision sets the maximal number of significant digits.
func (b *MonetaryContextBuilder) SetPrecision(precision int) *MonetaryContextBuilder {
	return b.SetKey(KeyPrecision, precision)
}

// SetMaxScale sets the maximal scale.
func (b *MonetaryContextBuilder) SetMaxScale(scale int) *MonetaryContextBuilder {
	return b.SetKey(KeyMaxScale, scale)
}

// SetFixedScale sets whether amounts use a fixed scale.
func (b *MonetaryContextBuilder) SetFixedScale(fixed bool) *MonetaryContextBuilder {
	return b.SetKey(KeyFixedScale, fixed)
}

// SetRoundingMode sets the rounding mode.
func (b *MonetaryContextBuilder) SetRoundingMode(m RoundingMode) *MonetaryContextBuilder {
	return b.Set(m)
}

// Build returns the context.
func (b *MonetaryContextBuilder) Build() MonetaryContext {
	return MonetaryContext{Context: b.b.Build()}
}

// AmountFactoryQuery selects amount factories by type and numeric requirements.
type AmountFactoryQuery struct {
	meta.Query
}

// Precision returns the required precision, 0 meaning unlimited.
func (q AmountFactoryQuery) Precision() (int, bool) {
	return meta.GetKey[int](q.Context, KeyPrecision)
}

// MaxScale returns the required scale, -1 meaning unlimited.
func (q AmountFactoryQuery) MaxScale() (int, bool) {
	return meta.GetKey[int](q.Context, KeyMaxScale)
}

// FixedScale reports whether a fixed scale is required.
func (q AmountFactoryQuery) FixedScale() bool {
	return meta.GetOr(q.Context, KeyFixedScale, false)
}

// ToBuilder returns a builder seeded with q.
func (q AmountFactoryQuery) ToBuilder() *AmountFactoryQueryBuilder {
	b := NewAmountFactoryQueryBuilder()
	b.ImportContext(q.Context, true)
	return b
}

func (q AmountFactoryQuery) String() string {
	return "AmountFactoryQuery" + q.Context.String()
}

// AmountFactoryQueryBuilder builds an AmountFactoryQuery.
type AmountFactoryQueryBuilder struct {
	queryAttrs[*AmountFactoryQueryBuilder]
}

// NewAmountFactoryQueryBuilder returns an empty builder.
func NewAmountFactoryQueryBuilder() *AmountFactoryQueryBuilder {
	b := &AmountFactoryQueryBuilder{}
	b.init(b)
	return b
}

// SetPrecision sets the required precision.
func (b *AmountFactoryQueryBuilder) SetPrecision(precision int) *AmountFactoryQueryBuilder {
	return b.SetKey(KeyPrecision, precision)
}

// SetMaxScale sets the required scale.
func (b *AmountFactoryQueryBuilder) SetMaxScale(scale int) *AmountFactoryQueryBuilder {
	return b.SetKey(KeyMaxScale, scale)
}

// SetFixedScale requires a fixed scale.
func (b *AmountFactoryQueryBuilder) SetFixedScale(fixed bool) *AmountFactoryQueryBuilder {
	return b.SetKey(KeyFixedScale, fixed)
}

// Build returns the query.
func (b *AmountFactoryQueryBuilder) Build() AmountFactoryQuery {
	return AmountFactoryQuery{Query: b.query()}
}
