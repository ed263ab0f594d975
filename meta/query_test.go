package meta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_ProviderNames(t *testing.T) {
	names := []string{"b", "a"}
	q := NewQueryBuilder().SetProviderNames(names...).Build()
	names[0] = "mutated"

	assert.Equal(t, []string{"b", "a"}, q.ProviderNames())

	empty := NewQueryBuilder().Build()
	assert.Empty(t, empty.ProviderNames())
}

func TestQuery_TargetType(t *testing.T) {
	q := NewQueryBuilder().Build()
	_, ok := q.TargetType()
	assert.False(t, ok)

	q = NewQueryBuilder().SetTargetType(reflect.TypeFor[rate]()).Build()
	got, ok := q.TargetType()
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[rate](), got)
}

func TestQuery_ToBuilder(t *testing.T) {
	q := NewQueryBuilder().SetProviderNames("ISO").SetKey("code", "CHF").Build()

	derived := q.ToBuilder().SetKey("code", "EUR").Build()

	assert.Equal(t, "CHF", GetOr(q.Context, "code", ""))
	assert.Equal(t, "EUR", GetOr(derived.Context, "code", ""))
	assert.Equal(t, []string{"ISO"}, derived.ProviderNames())
}
