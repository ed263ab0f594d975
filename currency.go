// Package moneta defines the monetary value types and the contexts and queries
// used to look them up: currencies, amounts, roundings and exchange rates.
package moneta

import (
	"fmt"
	"reflect"
	"regexp"

	"golang.org/x/text/language"

	"go-moneta/meta"
)

// Attribute keys of currency queries.
const (
	KeyCurrencyCodes = "Query.currencyCodes"
	KeyNumericCodes  = "Query.numericCodes"
	KeyLocales       = "Query.locales"
)

// CurrencyUnit a currency.
type CurrencyUnit interface {
	// CurrencyCode is the unique code, usually ISO 4217.
	CurrencyCode() string
	// NumericCode is the ISO 4217 numeric code, or -1 if unknown.
	NumericCode() int
	// DefaultFractionDigits is the usual number of minor digits, or -1 for pseudo currencies.
	DefaultFractionDigits() int
	// Context describes where the currency came from.
	Context() CurrencyContext
}

// SameCurrency reports whether a and b denote the same currency code.
func SameCurrency(a, b CurrencyUnit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CurrencyCode() == b.CurrencyCode()
}

// CurrencyContext describes the provider a currency came from.
type CurrencyContext struct {
	meta.Context
}

// ToBuilder returns a builder seeded with c.
func (c CurrencyContext) ToBuilder() *CurrencyContextBuilder {
	b := NewCurrencyContextBuilder(c.ProviderName())
	b.ImportContext(c.Context, true)
	return b
}

// CurrencyContextBuilder builds a CurrencyContext.
type CurrencyContextBuilder struct {
	attrs[*CurrencyContextBuilder]
}

// NewCurrencyContextBuilder returns a builder for a context of the named provider.
func NewCurrencyContextBuilder(provider string) *CurrencyContextBuilder {
	b := &CurrencyContextBuilder{}
	b.b = meta.NewBuilder().SetProviderName(provider)
	b.self = b
	return b
}

// Build returns the context.
func (b *CurrencyContextBuilder) Build() CurrencyContext {
	return CurrencyContext{Context: b.b.Build()}
}

// Currency is the CurrencyUnit implementation used by the bundled providers.
type Currency struct {
	code    string
	numeric int
	digits  int
	ctx     CurrencyContext
}

func (c Currency) CurrencyCode() string       { return c.code }
func (c Currency) NumericCode() int           { return c.numeric }
func (c Currency) DefaultFractionDigits() int { return c.digits }
func (c Currency) Context() CurrencyContext   { return c.ctx }
func (c Currency) String() string             { return c.code }

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// CurrencyBuilder builds a Currency.
type CurrencyBuilder struct {
	code    string
	numeric int
	digits  int
	ctx     CurrencyContext
}

// NewCurrencyBuilder returns a builder for the currency code with the given context.
// Numeric code and fraction digits default to -1 and 2.
func NewCurrencyBuilder(code string, ctx CurrencyContext) *CurrencyBuilder {
	return &CurrencyBuilder{
		code:    code,
		numeric: -1,
		digits:  2,
		ctx:     ctx,
	}
}

// SetNumericCode sets the numeric code, -1 for none.
func (b *CurrencyBuilder) SetNumericCode(numeric int) *CurrencyBuilder {
	b.numeric = numeric
	return b
}

// SetDefaultFractionDigits sets the default fraction digits, -1 for pseudo currencies.
func (b *CurrencyBuilder) SetDefaultFractionDigits(digits int) *CurrencyBuilder {
	b.digits = digits
	return b
}

// Build validates and returns the currency.
func (b *CurrencyBuilder) Build() (Currency, error) {
	if !currencyCodePattern.MatchString(b.code) {
		return Currency{}, fmt.Errorf("currency code [%q]: %w", b.code, ErrInvalidArgument)
	}
	if b.numeric < -1 {
		return Currency{}, fmt.Errorf("currency [%v] numeric code %d: %w", b.code, b.numeric, ErrInvalidArgument)
	}
	if b.digits < -1 {
		return Currency{}, fmt.Errorf("currency [%v] fraction digits %d: %w", b.code, b.digits, ErrInvalidArgument)
	}
	if b.ctx.ProviderName() == "" {
		return Currency{}, fmt.Errorf("currency [%v] context without provider: %w", b.code, ErrInvalidArgument)
	}
	return Currency{code: b.code, numeric: b.numeric, digits: b.digits, ctx: b.ctx}, nil
}

// CurrencyQuery selects currencies by code, numeric code or locale. A query
// with none of these filters asks for every currency a provider knows.
type CurrencyQuery struct {
	meta.Query
}

// CurrencyCodes returns the requested codes.
func (q CurrencyQuery) CurrencyCodes() []string {
	return sliceAttr[string](q.Context, KeyCurrencyCodes)
}

// NumericCodes returns the requested numeric codes.
func (q CurrencyQuery) NumericCodes() []int {
	return sliceAttr[int](q.Context, KeyNumericCodes)
}

// Locales returns the requested locales.
func (q CurrencyQuery) Locales() []language.Tag {
	return sliceAttr[language.Tag](q.Context, KeyLocales)
}

// IsUnfiltered reports whether the query selects all currencies.
func (q CurrencyQuery) IsUnfiltered() bool {
	return len(q.CurrencyCodes()) == 0 && len(q.NumericCodes()) == 0 && len(q.Locales()) == 0
}

// ToBuilder returns a builder seeded with q.
func (q CurrencyQuery) ToBuilder() *CurrencyQueryBuilder {
	b := NewCurrencyQueryBuilder()
	b.ImportContext(q.Context, true)
	return b
}

func (q CurrencyQuery) String() string {
	return "CurrencyQuery" + q.Context.String()
}

// CurrencyQueryBuilder builds a CurrencyQuery.
type CurrencyQueryBuilder struct {
	queryAttrs[*CurrencyQueryBuilder]
}

// NewCurrencyQueryBuilder returns an empty builder.
func NewCurrencyQueryBuilder() *CurrencyQueryBuilder {
	b := &CurrencyQueryBuilder{}
	b.init(b)
	return b
}

// SetCurrencyCodes sets the currency codes to look up.
func (b *CurrencyQueryBuilder) SetCurrencyCodes(codes ...string) *CurrencyQueryBuilder {
	return b.SetKey(KeyCurrencyCodes, append([]string(nil), codes...))
}

// SetNumericCodes sets the numeric codes to look up.
func (b *CurrencyQueryBuilder) SetNumericCodes(codes ...int) *CurrencyQueryBuilder {
	return b.SetKey(KeyNumericCodes, append([]int(nil), codes...))
}

// SetLocales sets the locales whose currencies to look up.
func (b *CurrencyQueryBuilder) SetLocales(locales ...language.Tag) *CurrencyQueryBuilder {
	return b.SetKey(KeyLocales, append([]language.Tag(nil), locales...))
}

// Build returns the query.
func (b *CurrencyQueryBuilder) Build() CurrencyQuery {
	return CurrencyQuery{Query: b.query()}
}

var typeOfCurrencyUnit = reflect.TypeFor[CurrencyUnit]()
