package meta

import (
	"reflect"
	"time"
)

// Builder accumulates attributes for a Context. A Builder is not safe for
// concurrent use; Build may be called any number of times and every call
// returns an independent snapshot.
type Builder struct {
	data map[reflect.Type]map[any]any
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{data: map[reflect.Type]map[any]any{}}
}

// Set stores value under its dynamic type, using the type as key.
// A nil value is ignored.
func (b *Builder) Set(value any) *Builder {
	if value == nil {
		return b
	}
	t := reflect.TypeOf(value)
	return b.SetTyped(t, value, t)
}

// SetKey stores value under key and its dynamic type. A nil value is ignored.
func (b *Builder) SetKey(key any, value any) *Builder {
	if value == nil {
		return b
	}
	return b.SetTyped(key, value, reflect.TypeOf(value))
}

// SetTyped stores value under (t, key). Use it to store a value under an
// interface type. The value is not checked against t; a mismatch surfaces when
// the attribute is read back with a typed accessor.
func (b *Builder) SetTyped(key any, value any, t reflect.Type) *Builder {
	keys, ok := b.data[t]
	if !ok {
		keys = map[any]any{}
		b.data[t] = keys
	}
	keys[key] = value
	return b
}

// SetProviderName sets the provider attribute.
func (b *Builder) SetProviderName(name string) *Builder {
	return b.SetKey(KeyProvider, name)
}

// SetTimestamp sets the timestamp attribute.
func (b *Builder) SetTimestamp(ts time.Time) *Builder {
	return b.SetKey(KeyTimestamp, ts)
}

// Remove deletes the attribute stored under (t, key).
func (b *Builder) Remove(t reflect.Type, key any) *Builder {
	if keys, ok := b.data[t]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(b.data, t)
		}
	}
	return b
}

// RemoveKeys deletes every attribute stored under one of keys, whatever its type.
func (b *Builder) RemoveKeys(keys ...any) *Builder {
	for t := range b.data {
		for _, k := range keys {
			b.Remove(t, k)
		}
	}
	return b
}

// Has reports whether an attribute is stored under (t, key).
func (b *Builder) Has(t reflect.Type, key any) bool {
	_, ok := b.data[t][key]
	return ok
}

// ImportContext merges all attributes of other into the builder. With
// overwrite false an attribute already present is kept; with overwrite true the
// imported value replaces it.
func (b *Builder) ImportContext(other Context, overwrite bool) *Builder {
	for t, keys := range other.data {
		for k, v := range keys {
			if !overwrite && b.Has(t, k) {
				continue
			}
			b.SetTyped(k, v, t)
		}
	}
	return b
}

// Build returns an immutable snapshot of the current attributes.
func (b *Builder) Build() Context {
	data := make(map[reflect.Type]map[any]any, len(b.data))
	for t, keys := range b.data {
		copied := make(map[any]any, len(keys))
		for k, v := range keys {
			copied[k] = v
		}
		data[t] = copied
	}
	return Context{data: data}
}
