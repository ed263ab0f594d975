// Package meta provides the typed attribute store shared by every monetary
// domain: an immutable Context, its Builder, and the Query specialisation that
// carries provider selection.
//
// Attributes are addressed by (type, key). Unnamed attributes use the type
// itself as key, so a context can hold one "singleton-typed" value per type and
// any number of distinctly keyed values of the same type.
package meta

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

const (
	// KeyProvider is the attribute key of the name of the provider that produced an artifact.
	KeyProvider = "provider"
	// KeyTimestamp is the attribute key of the timestamp an artifact or query refers to.
	KeyTimestamp = "timestamp"
)

// Context is an immutable mapping from (attribute type, key) to value.
// The zero value is an empty context. A Context is safe for concurrent reads.
type Context struct {
	data map[reflect.Type]map[any]any
}

// TypeMismatchError reports a typed read of an attribute stored under a type its
// value does not satisfy. It is a caller contract violation and is raised as a panic.
type TypeMismatchError struct {
	Type  reflect.Type
	Key   any
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("meta: attribute [%v] of type %v holds %T", e.Key, e.Type, e.Value)
}

// Get returns the attribute of type T stored with the type-as-key convention.
func Get[T any](c Context) (T, bool) {
	t := reflect.TypeFor[T]()
	return typed[T](c, t, t)
}

// GetKey returns the attribute of type T stored under key.
func GetKey[T any](c Context, key any) (T, bool) {
	return typed[T](c, reflect.TypeFor[T](), key)
}

// GetOr returns the attribute of type T stored under key, or def when absent.
func GetOr[T any](c Context, key any, def T) T {
	if v, ok := GetKey[T](c, key); ok {
		return v
	}
	return def
}

func typed[T any](c Context, t reflect.Type, key any) (T, bool) {
	var zero T
	raw, ok := c.Value(t, key)
	if !ok {
		return zero, false
	}
	if raw == nil {
		return zero, true
	}
	v, ok := raw.(T)
	if !ok {
		panic(&TypeMismatchError{Type: t, Key: key, Value: raw})
	}
	return v, true
}

// Value returns the raw attribute stored under (t, key).
func (c Context) Value(t reflect.Type, key any) (any, bool) {
	keys, ok := c.data[t]
	if !ok {
		return nil, false
	}
	v, ok := keys[key]
	return v, ok
}

// Types returns the populated attribute types ordered by their string form.
func (c Context) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(c.data))
	for t := range c.data {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// Keys returns the keys populated for the given type.
func (c Context) Keys(t reflect.Type) []any {
	keys := make([]any, 0, len(c.data[t]))
	for k := range c.data[t] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
	return keys
}

// Len returns the number of attributes.
func (c Context) Len() int {
	n := 0
	for _, keys := range c.data {
		n += len(keys)
	}
	return n
}

// IsEmpty reports whether the context holds no attributes.
func (c Context) IsEmpty() bool {
	return c.Len() == 0
}

// ProviderName returns the provider attribute, or "" if not set.
func (c Context) ProviderName() string {
	return GetOr(c, KeyProvider, "")
}

// Timestamp returns the timestamp attribute.
func (c Context) Timestamp() (time.Time, bool) {
	return GetKey[time.Time](c, KeyTimestamp)
}

// Equal reports whether both contexts hold the same attributes.
func (c Context) Equal(other Context) bool {
	if c.Len() != other.Len() {
		return false
	}
	for t, keys := range c.data {
		for k, v := range keys {
			ov, ok := other.Value(t, k)
			if !ok || !reflect.DeepEqual(v, ov) {
				return false
			}
		}
	}
	return true
}

// ToBuilder returns a builder seeded with all attributes of c.
func (c Context) ToBuilder() *Builder {
	return NewBuilder().ImportContext(c, true)
}

func (c Context) String() string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for _, t := range c.Types() {
		for _, k := range c.Keys(t) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			if kt, ok := k.(reflect.Type); ok && kt == t {
				fmt.Fprintf(&b, "%v=%v", t, c.data[t][k])
				continue
			}
			fmt.Fprintf(&b, "%v=%v", k, c.data[t][k])
		}
	}
	b.WriteString("}")
	return b.String()
}
