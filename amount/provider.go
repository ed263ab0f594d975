package amount

import (
	"reflect"

	"github.com/shopspring/decimal"

	"go-moneta"
)

// InclusionPolicy controls when a provider takes part in factory lookups.
type InclusionPolicy int

const (
	// Always providers are part of every lookup.
	Always InclusionPolicy = iota
	// Directed providers are only consulted when a query names them.
	Directed
	// Never providers are not consulted.
	Never
)

func (p InclusionPolicy) String() string {
	switch p {
	case Always:
		return "ALWAYS"
	case Directed:
		return "DIRECTED"
	default:
		return "NEVER"
	}
}

// Provider supplies the factory of one amount type.
type Provider interface {
	Name() string
	AmountType() reflect.Type
	InclusionPolicy() InclusionPolicy
	DefaultContext() moneta.MonetaryContext
	MaximalContext() moneta.MonetaryContext
	Factory() moneta.AmountFactory
}

// Provider names of the built-in amount types.
const (
	MoneyProviderName     = "Money"
	FastMoneyProviderName = "FastMoney"
)

// MoneyProvider provides Money factories.
type MoneyProvider struct {
	ctx moneta.MonetaryContext
}

// NewMoneyProvider returns a provider creating Money with the default context
// ctx. A zero ctx uses DefaultMoneyPrecision and an unlimited scale.
func NewMoneyProvider(ctx moneta.MonetaryContext) *MoneyProvider {
	if ctx.IsEmpty() {
		ctx = MoneyContext(DefaultMoneyPrecision, -1)
	}
	return &MoneyProvider{ctx: ctx}
}

func (p *MoneyProvider) Name() string                           { return MoneyProviderName }
func (p *MoneyProvider) AmountType() reflect.Type               { return MoneyType }
func (p *MoneyProvider) InclusionPolicy() InclusionPolicy       { return Always }
func (p *MoneyProvider) DefaultContext() moneta.MonetaryContext { return p.ctx }
func (p *MoneyProvider) MaximalContext() moneta.MonetaryContext { return MoneyContext(0, -1) }

func (p *MoneyProvider) Factory() moneta.AmountFactory {
	return &moneyFactory{provider: p}
}

type moneyFactory struct {
	provider *MoneyProvider
}

func (f *moneyFactory) AmountType() reflect.Type               { return MoneyType }
func (f *moneyFactory) DefaultContext() moneta.MonetaryContext { return f.provider.DefaultContext() }
func (f *moneyFactory) MaximalContext() moneta.MonetaryContext { return f.provider.MaximalContext() }

func (f *moneyFactory) Create(currency moneta.CurrencyUnit, number decimal.Decimal) (moneta.MonetaryAmount, error) {
	return NewMoney(currency, number, f.provider.DefaultContext())
}

// FastMoneyProvider provides FastMoney factories.
type FastMoneyProvider struct{}

func (FastMoneyProvider) Name() string                           { return FastMoneyProviderName }
func (FastMoneyProvider) AmountType() reflect.Type               { return FastMoneyType }
func (FastMoneyProvider) InclusionPolicy() InclusionPolicy       { return Always }
func (FastMoneyProvider) DefaultContext() moneta.MonetaryContext { return fastMoneyContext }
func (FastMoneyProvider) MaximalContext() moneta.MonetaryContext { return fastMoneyContext }
func (FastMoneyProvider) Factory() moneta.AmountFactory          { return fastMoneyFactory{} }

type fastMoneyFactory struct{}

func (fastMoneyFactory) AmountType() reflect.Type               { return FastMoneyType }
func (fastMoneyFactory) DefaultContext() moneta.MonetaryContext { return fastMoneyContext }
func (fastMoneyFactory) MaximalContext() moneta.MonetaryContext { return fastMoneyContext }

func (fastMoneyFactory) Create(currency moneta.CurrencyUnit, number decimal.Decimal) (moneta.MonetaryAmount, error) {
	return NewFastMoney(currency, number)
}
