package moneta

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-moneta/meta"
)

// Attribute keys of conversion queries.
const (
	KeyBaseCurrency = "Query.baseCurrency"
	KeyTermCurrency = "Query.termCurrency"
	KeyRateTypes    = "Query.rateTypes"
)

// RateType classifies exchange rates by how current they are.
type RateType int

const (
	RateAny RateType = iota
	RateRealtime
	RateDeferred
	RateHistoric
	RateOther
)

func (t RateType) String() string {
	switch t {
	case RateAny:
		return "ANY"
	case RateRealtime:
		return "REALTIME"
	case RateDeferred:
		return "DEFERRED"
	case RateHistoric:
		return "HISTORIC"
	default:
		return "OTHER"
	}
}

// ConversionContext describes an exchange rate: its provider and rate type.
type ConversionContext struct {
	meta.Context
}

// RateType returns the rate type.
func (c ConversionContext) RateType() RateType {
	t, ok := meta.Get[RateType](c.Context)
	if !ok {
		return RateAny
	}
	return t
}

// NewConversionContext returns the context of a rate of rateType supplied by provider.
func NewConversionContext(provider string, rateType RateType) ConversionContext {
	return ConversionContext{Context: meta.NewBuilder().SetProviderName(provider).Set(rateType).Build()}
}

// ConversionQuery selects an exchange rate.
type ConversionQuery struct {
	meta.Query
}

// BaseCurrency returns the currency converted from.
func (q ConversionQuery) BaseCurrency() (CurrencyUnit, bool) {
	c, ok := meta.GetKey[CurrencyUnit](q.Context, KeyBaseCurrency)
	return c, ok && c != nil
}

// TermCurrency returns the currency converted to.
func (q ConversionQuery) TermCurrency() (CurrencyUnit, bool) {
	c, ok := meta.GetKey[CurrencyUnit](q.Context, KeyTermCurrency)
	return c, ok && c != nil
}

// RateTypes returns the acceptable rate types; empty accepts any.
func (q ConversionQuery) RateTypes() []RateType {
	return sliceAttr[RateType](q.Context, KeyRateTypes)
}

// AcceptsRateType reports whether t satisfies the query's rate types.
func (q ConversionQuery) AcceptsRateType(t RateType) bool {
	types := q.RateTypes()
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == RateAny || want == t {
			return true
		}
	}
	return false
}

// ToBuilder returns a builder seeded with q.
func (q ConversionQuery) ToBuilder() *ConversionQueryBuilder {
	b := NewConversionQueryBuilder()
	b.ImportContext(q.Context, true)
	return b
}

func (q ConversionQuery) String() string {
	return "ConversionQuery" + q.Context.String()
}

// ConversionQueryBuilder builds a ConversionQuery.
type ConversionQueryBuilder struct {
	queryAttrs[*ConversionQueryBuilder]
}

// NewConversionQueryBuilder returns an empty builder.
func NewConversionQueryBuilder() *ConversionQueryBuilder {
	b := &ConversionQueryBuilder{}
	b.init(b)
	return b
}

// SetBaseCurrency sets the currency converted from.
func (b *ConversionQueryBuilder) SetBaseCurrency(c CurrencyUnit) *ConversionQueryBuilder {
	return b.SetTyped(KeyBaseCurrency, c, typeOfCurrencyUnit)
}

// SetTermCurrency sets the currency converted to.
func (b *ConversionQueryBuilder) SetTermCurrency(c CurrencyUnit) *ConversionQueryBuilder {
	return b.SetTyped(KeyTermCurrency, c, typeOfCurrencyUnit)
}

// SetRateTypes sets the acceptable rate types.
func (b *ConversionQueryBuilder) SetRateTypes(types ...RateType) *ConversionQueryBuilder {
	return b.SetKey(KeyRateTypes, append([]RateType(nil), types...))
}

// Build returns the query.
func (b *ConversionQueryBuilder) Build() ConversionQuery {
	return ConversionQuery{Query: b.query()}
}

// ExchangeRate converts amounts of a base currency into a term currency.
// A derived rate records the rates it was computed from.
type ExchangeRate struct {
	base   CurrencyUnit
	term   CurrencyUnit
	factor decimal.Decimal
	ctx    ConversionContext
	chain  []ExchangeRate
}

// NewExchangeRate validates and returns a rate. When chain is given it must
// lead from base to term, each link's term being the next link's base.
func NewExchangeRate(base, term CurrencyUnit, factor decimal.Decimal, ctx ConversionContext, chain ...ExchangeRate) (ExchangeRate, error) {
	if base == nil || term == nil {
		return ExchangeRate{}, fmt.Errorf("exchange rate without currency: %w", ErrInvalidArgument)
	}
	if !factor.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("exchange rate [%v->%v] factor %v: %w", base.CurrencyCode(), term.CurrencyCode(), factor, ErrInvalidArgument)
	}
	if len(chain) > 0 {
		if !SameCurrency(chain[0].base, base) {
			return ExchangeRate{}, fmt.Errorf("rate chain starts at %v, not %v: %w", chain[0].base.CurrencyCode(), base.CurrencyCode(), ErrInvalidArgument)
		}
		for i := 1; i < len(chain); i++ {
			if !SameCurrency(chain[i-1].term, chain[i].base) {
				return ExchangeRate{}, fmt.Errorf("rate chain broken between %v and %v: %w", chain[i-1].term.CurrencyCode(), chain[i].base.CurrencyCode(), ErrInvalidArgument)
			}
		}
		if last := chain[len(chain)-1]; !SameCurrency(last.term, term) {
			return ExchangeRate{}, fmt.Errorf("rate chain ends at %v, not %v: %w", last.term.CurrencyCode(), term.CurrencyCode(), ErrInvalidArgument)
		}
	}
	return ExchangeRate{
		base:   base,
		term:   term,
		factor: factor,
		ctx:    ctx,
		chain:  append([]ExchangeRate(nil), chain...),
	}, nil
}

func (r ExchangeRate) Base() CurrencyUnit         { return r.base }
func (r ExchangeRate) Term() CurrencyUnit         { return r.term }
func (r ExchangeRate) Factor() decimal.Decimal    { return r.factor }
func (r ExchangeRate) Context() ConversionContext { return r.ctx }

// Chain returns the rates r was derived from, empty for a direct rate.
func (r ExchangeRate) Chain() []ExchangeRate {
	return append([]ExchangeRate(nil), r.chain...)
}

// IsDerived reports whether r was computed from other rates.
func (r ExchangeRate) IsDerived() bool {
	return len(r.chain) > 0
}

func (r ExchangeRate) String() string {
	return fmt.Sprintf("%v->%v %v (%v)", r.base.CurrencyCode(), r.term.CurrencyCode(), r.factor, r.ctx.ProviderName())
}

// Exchanged the result of a conversion.
type Exchanged struct {
	Rate   ExchangeRate
	Amount MonetaryAmount
}
