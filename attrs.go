package moneta

import (
	"reflect"
	"time"

	"go-moneta/meta"
)

// attrs carries the attribute setters shared by the domain builders while
// returning the concrete builder for chaining.
type attrs[B any] struct {
	b    *meta.Builder
	self B
}

// Set stores value under its dynamic type, using the type as key.
func (a *attrs[B]) Set(value any) B {
	a.b.Set(value)
	return a.self
}

// SetKey stores value under key and its dynamic type.
func (a *attrs[B]) SetKey(key any, value any) B {
	a.b.SetKey(key, value)
	return a.self
}

// SetTyped stores value under (t, key).
func (a *attrs[B]) SetTyped(key any, value any, t reflect.Type) B {
	a.b.SetTyped(key, value, t)
	return a.self
}

// SetTimestamp sets the point in time the attributes refer to.
func (a *attrs[B]) SetTimestamp(ts time.Time) B {
	a.b.SetTimestamp(ts)
	return a.self
}

// RemoveKeys deletes every attribute stored under one of keys.
func (a *attrs[B]) RemoveKeys(keys ...any) B {
	a.b.RemoveKeys(keys...)
	return a.self
}

// ImportContext merges c into the builder; see meta.Builder.ImportContext.
func (a *attrs[B]) ImportContext(c meta.Context, overwrite bool) B {
	a.b.ImportContext(c, overwrite)
	return a.self
}

// queryAttrs adds the query attributes on top of attrs.
type queryAttrs[B any] struct {
	attrs[B]
	qb *meta.QueryBuilder
}

func (q *queryAttrs[B]) init(self B) {
	q.qb = meta.NewQueryBuilder()
	q.b = q.qb.Attributes()
	q.self = self
}

// SetProviderNames sets the ordered providers to query.
func (q *queryAttrs[B]) SetProviderNames(names ...string) B {
	q.qb.SetProviderNames(names...)
	return q.self
}

// SetTargetType sets the requested result type.
func (q *queryAttrs[B]) SetTargetType(t reflect.Type) B {
	q.qb.SetTargetType(t)
	return q.self
}

func (q *queryAttrs[B]) query() meta.Query {
	return q.qb.Build()
}

func sliceAttr[T any](c meta.Context, key string) []T {
	v, _ := meta.GetKey[[]T](c, key)
	out := make([]T, len(v))
	copy(out, v)
	return out
}
