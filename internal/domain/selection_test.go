package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantSelectionEqualIgnoresOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	v1, v2 := uuid.New(), uuid.New()

	x := Select(VariantChoice{a, v1}, VariantChoice{b, v2})
	y := Select(VariantChoice{b, v2}, VariantChoice{a, v1})

	assert.True(t, x.Equal(y))
	assert.Equal(t, x.Key(), y.Key())
}

func TestVariantSelectionSubsetIsNotEqual(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	v1, v2 := uuid.New(), uuid.New()

	full := Select(VariantChoice{a, v1}, VariantChoice{b, v2})
	part := Select(VariantChoice{a, v1})

	assert.False(t, full.Equal(part))
	assert.False(t, part.Equal(full))
	assert.False(t, full.Equal(Select(VariantChoice{a, v1}, VariantChoice{b, v1})))
}

func TestVariantSelectionEmpty(t *testing.T) {
	var zero VariantSelection
	assert.True(t, zero.IsEmpty())
	assert.True(t, zero.Equal(NewVariantSelection(map[uuid.UUID]uuid.UUID{})))
	assert.Equal(t, "", zero.Key())
}

func TestSelectLaterPairWins(t *testing.T) {
	g, v1, v2 := uuid.New(), uuid.New(), uuid.New()
	sel := Select(VariantChoice{g, v1}, VariantChoice{g, v2})

	require.Equal(t, 1, sel.Len())
	got, ok := sel.Variant(g)
	require.True(t, ok)
	assert.Equal(t, v2, got)
}

func TestVariantLookup(t *testing.T) {
	groups := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	m := map[uuid.UUID]uuid.UUID{}
	for _, g := range groups {
		m[g] = uuid.New()
	}
	sel := NewVariantSelection(m)

	for g, v := range m {
		got, ok := sel.Variant(g)
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}
	_, ok := sel.Variant(uuid.New())
	assert.False(t, ok)
	assert.Equal(t, m, sel.Map())
}

func TestVariantSelectionJSON(t *testing.T) {
	g, v := uuid.New(), uuid.New()
	sel := Select(VariantChoice{g, v})

	b, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, `{"`+g.String()+`":"`+v.String()+`"}`, string(b))

	var back VariantSelection
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, sel.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`{"nope":"x"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &back))
}

func TestVariantSelectionScan(t *testing.T) {
	g, v := uuid.New(), uuid.New()
	sel := Select(VariantChoice{g, v})
	val, err := sel.Value()
	require.NoError(t, err)

	var fromString, fromBytes, fromNil VariantSelection
	require.NoError(t, fromString.Scan(val))
	require.NoError(t, fromBytes.Scan([]byte(val.(string))))
	require.NoError(t, fromNil.Scan(nil))

	assert.True(t, sel.Equal(fromString))
	assert.True(t, sel.Equal(fromBytes))
	assert.True(t, fromNil.IsEmpty())
	assert.Error(t, fromNil.Scan(42))
}
