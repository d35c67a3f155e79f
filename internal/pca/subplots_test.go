package pca

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/errs"
)

func TestLayoutPlan_FlatListPairsEveryColumn(t *testing.T) {
	plan, err := LayoutPlan(Columns("PC1", "PC2", "PC3"), 2)
	require.NoError(t, err)
	assert.Equal(t, Plan{
		{{"PC1", "PC2"}, {"PC1", "PC3"}},
		{{"PC2", "PC3"}},
	}, plan)
}

func TestLayoutPlan_CombinationCount(t *testing.T) {
	cols := []string{"PC1", "PC2", "PC3", "PC4", "PC5", "PC6"}
	for n := 2; n <= len(cols); n++ {
		plan, err := LayoutPlan(Columns(cols[:n]...), 3)
		require.NoError(t, err)
		assert.Equal(t, n*(n-1)/2, plan.Len(), "n=%d", n)
		for _, row := range plan {
			assert.LessOrEqual(t, len(row), 3)
		}
	}
}

func TestLayoutPlan_DuplicateColumnsCountOnce(t *testing.T) {
	plan, err := LayoutPlan(Columns("PC2", "PC1", "PC2"), 5)
	require.NoError(t, err)
	assert.Equal(t, Plan{{{"PC2", "PC1"}}}, plan)
}

func TestLayoutPlan_PairsPassThrough(t *testing.T) {
	plan, err := LayoutPlan(Pairs(Pair{"PC3", "PC1"}, Pair{"PC1", "PC3"}, Pair{"PC2", "PC4"}), 1)
	require.NoError(t, err)
	assert.Equal(t, Plan{{{"PC3", "PC1"}}, {{"PC1", "PC3"}}, {{"PC2", "PC4"}}}, plan)
}

func TestLayoutPlan_ParsedForms(t *testing.T) {
	testCases := []struct {
		name string
		json string
		want []Pair
	}{
		{"flat", `["PC1","PC2","PC3"]`, []Pair{{"PC1", "PC2"}, {"PC1", "PC3"}, {"PC2", "PC3"}}},
		{"pairs", `[["PC1","PC2"],["PC3","PC4"]]`, []Pair{{"PC1", "PC2"}, {"PC3", "PC4"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sp, err := ParseSubplots(tc.json)
			require.NoError(t, err)
			plan, err := LayoutPlan(sp, 10)
			require.NoError(t, err)
			assert.Equal(t, tc.want, plan.Pairs())
		})
	}
}

func TestLayoutPlan_InvalidSpecs(t *testing.T) {
	testCases := []struct {
		name string
		json string
	}{
		{"empty list", `[]`},
		{"single column", `["PC1"]`},
		{"mixed", `["PC1",["PC2","PC3"]]`},
		{"triple", `[["PC1","PC2","PC3"]]`},
		{"non-string", `[["PC1",2]]`},
		{"number", `[1,2]`},
		{"object", `{"x":"PC1"}`},
		{"empty name", `["PC1",""]`},
		{"empty pair member", `[["PC1",""]]`},
		{"null", `null`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sp, err := ParseSubplots(tc.json)
			require.NoError(t, err)
			_, err = LayoutPlan(sp, 2)
			assert.True(t, errs.IsInvalidSubplotSpec(err), "got %v", err)
		})
	}
}

func TestParseSubplots_Malformed(t *testing.T) {
	_, err := ParseSubplots(`["PC1"`)
	assert.True(t, errs.IsInvalidSubplotSpec(err))
}

func TestLayoutPlan_ColumnsPerRow(t *testing.T) {
	_, err := LayoutPlan(Columns("PC1", "PC2"), 0)
	assert.True(t, errs.Is(err, errs.CodeInvalidOption))
}

func TestSubplots_YAMLAndJSON(t *testing.T) {
	var doc struct {
		Subplots Subplots `yaml:"subplots"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("subplots:\n  - [PC1, PC2]\n  - [PC1, PC3]\n"), &doc))
	pairs, err := doc.Subplots.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"PC1", "PC2"}, {"PC1", "PC3"}}, pairs)

	out, err := json.Marshal(Columns("PC1", "PC2"))
	require.NoError(t, err)
	assert.JSONEq(t, `["PC1","PC2"]`, string(out))

	plan, err := LayoutPlan(Columns("PC1", "PC2", "PC3"), 2)
	require.NoError(t, err)
	out, err = json.Marshal(plan)
	require.NoError(t, err)
	assert.Equal(t, `[[["PC1","PC2"],["PC1","PC3"]],[["PC2","PC3"]]]`, string(out))
}

func TestFromValue(t *testing.T) {
	pairs, err := FromValue([][]string{{"a", "b"}}).Resolve()
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"a", "b"}}, pairs)

	_, err = FromValue(42).Resolve()
	assert.True(t, errs.IsInvalidSubplotSpec(err))
	assert.True(t, Subplots{}.IsZero())
}
