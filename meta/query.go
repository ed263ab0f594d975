package meta

import (
	"reflect"
	"slices"
	"time"
)

const (
	// KeyQueryProviders is the attribute key of the ordered provider names a query targets.
	KeyQueryProviders = "Query.providers"
	// KeyQueryTargetType is the attribute key of the result type a query asks for.
	KeyQueryTargetType = "Query.targetType"
)

var typeOfType = reflect.TypeFor[reflect.Type]()

// Query is a Context describing a lookup. Besides its filter attributes it
// carries an ordered list of provider names; an empty list lets the resolving
// façade choose its default chain.
type Query struct {
	Context
}

// ProviderNames returns the explicitly targeted providers, in order.
func (q Query) ProviderNames() []string {
	names, _ := GetKey[[]string](q.Context, KeyQueryProviders)
	return slices.Clone(names)
}

// TargetType returns the requested result type, if any.
func (q Query) TargetType() (reflect.Type, bool) {
	t, ok := GetKey[reflect.Type](q.Context, KeyQueryTargetType)
	return t, ok && t != nil
}

// ToBuilder returns a query builder seeded with all attributes of q.
func (q Query) ToBuilder() *QueryBuilder {
	return NewQueryBuilder().ImportContext(q.Context, true)
}

// QueryBuilder builds a Query. Like Builder it is not safe for concurrent use.
type QueryBuilder struct {
	b *Builder
}

// NewQueryBuilder returns an empty QueryBuilder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{b: NewBuilder()}
}

// Attributes exposes the underlying attribute builder.
func (qb *QueryBuilder) Attributes() *Builder {
	return qb.b
}

// SetProviderNames sets the ordered list of providers to query.
func (qb *QueryBuilder) SetProviderNames(names ...string) *QueryBuilder {
	qb.b.SetKey(KeyQueryProviders, slices.Clone(names))
	return qb
}

// SetTargetType sets the requested result type.
func (qb *QueryBuilder) SetTargetType(t reflect.Type) *QueryBuilder {
	qb.b.SetTyped(KeyQueryTargetType, t, typeOfType)
	return qb
}

// SetTimestamp sets the point in time the query refers to.
func (qb *QueryBuilder) SetTimestamp(ts time.Time) *QueryBuilder {
	qb.b.SetTimestamp(ts)
	return qb
}

// Set stores value under its dynamic type, using the type as key.
func (qb *QueryBuilder) Set(value any) *QueryBuilder {
	qb.b.Set(value)
	return qb
}

// SetKey stores value under key and its dynamic type.
func (qb *QueryBuilder) SetKey(key any, value any) *QueryBuilder {
	qb.b.SetKey(key, value)
	return qb
}

// SetTyped stores value under (t, key).
func (qb *QueryBuilder) SetTyped(key any, value any, t reflect.Type) *QueryBuilder {
	qb.b.SetTyped(key, value, t)
	return qb
}

// ImportContext merges other into the builder, see Builder.ImportContext.
func (qb *QueryBuilder) ImportContext(other Context, overwrite bool) *QueryBuilder {
	qb.b.ImportContext(other, overwrite)
	return qb
}

// Build returns an immutable Query snapshot.
func (qb *QueryBuilder) Build() Query {
	return Query{Context: qb.b.Build()}
}
