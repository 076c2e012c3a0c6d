package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsDeterministic(t *testing.T) {
	type params struct {
		Search string `json:"search"`
		Page   int    `json:"page"`
	}
	a, err := Key("purchases:list", params{Search: "acme", Page: 2})
	require.NoError(t, err)
	b, err := Key("purchases:list", params{Search: "acme", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKeyIgnoresMapAssemblyOrder(t *testing.T) {
	a, err := Key("r", map[string]any{"search": "x", "page": 1, "status": "paid"})
	require.NoError(t, err)
	b, err := Key("r", map[string]any{"status": "paid", "page": 1, "search": "x"})
	require.NoError(t, err)
	assert.Equal(t, a, b, "semantically identical params must hash identically")
}

func TestKeyStructAndMapEquivalent(t *testing.T) {
	type params struct {
		Page   int    `json:"page"`
		Search string `json:"search"`
	}
	a, err := Key("r", params{Page: 3, Search: "ink"})
	require.NoError(t, err)
	b, err := Key("r", map[string]any{"search": "ink", "page": 3})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKeySeparatesResources(t *testing.T) {
	p := map[string]any{"page": 1}
	a, err := Key("purchases:list", p)
	require.NoError(t, err)
	b, err := Key("orders:list", p)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestKeyDistinguishesValues(t *testing.T) {
	a, _ := Key("r", map[string]any{"page": 1})
	b, _ := Key("r", map[string]any{"page": 2})
	assert.NotEqual(t, a, b)
}

func TestDefaultPoliciesEnvOverride(t *testing.T) {
	t.Setenv("CACHE_LIST_DEDUPE_SECONDS", "90")
	p := DefaultPolicies()
	assert.Equal(t, 90*time.Second, p.List.DedupeInterval)
	assert.Equal(t, time.Hour, p.Dropdown.DedupeInterval, "untouched classes keep their defaults")
}

func TestDefaultPoliciesIgnoreJunkEnv(t *testing.T) {
	t.Setenv("CACHE_STATS_DEDUPE_SECONDS", "soon")
	p := DefaultPolicies()
	assert.Equal(t, 15*time.Minute, p.Stats.DedupeInterval)
}
