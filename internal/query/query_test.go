package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = FieldMap{
	"id":            "t.id",
	"name":          "t.name",
	"tuition":       "t.tuition",
	"careers":       "t.careers",
	"averageCost":   "t.average_cost",
	"createdAt":     "t.created_at",
	"jobAssistance": "t.job_assistance",
}

func TestParseDefaults(t *testing.T) {
	lq, err := Parse(url.Values{}, testFields)
	require.NoError(t, err)

	assert.Equal(t, DefaultPage, lq.Page)
	assert.Equal(t, DefaultLimit, lq.Limit)
	assert.Empty(t, lq.Conditions)
	assert.Empty(t, lq.Select)
	assert.Empty(t, lq.Sort)
}

func TestParseBareKeyIsEquality(t *testing.T) {
	lq, err := Parse(url.Values{"name": {"Devworks"}}, testFields)
	require.NoError(t, err)

	require.Len(t, lq.Conditions, 1)
	assert.Equal(t, Condition{Field: "name", Op: OpEq, Values: []string{"Devworks"}}, lq.Conditions[0])
}

func TestParseBracketOperators(t *testing.T) {
	for _, tc := range []struct {
		key  string
		op   Op
		sql  string
		args []any
	}{
		{"tuition[gt]", OpGt, "t.tuition > ?", []any{"9000"}},
		{"tuition[gte]", OpGte, "t.tuition >= ?", []any{"9000"}},
		{"tuition[lt]", OpLt, "t.tuition < ?", []any{"9000"}},
		{"tuition[lte]", OpLte, "t.tuition <= ?", []any{"9000"}},
	} {
		lq, err := Parse(url.Values{tc.key: {"9000"}}, testFields)
		require.NoError(t, err, tc.key)
		require.Len(t, lq.Conditions, 1)
		assert.Equal(t, tc.op, lq.Conditions[0].Op)

		where, args := lq.WhereSQL()
		assert.Equal(t, tc.sql, where)
		assert.Equal(t, tc.args, args)
	}
}

func TestParseInSplitsValues(t *testing.T) {
	lq, err := Parse(url.Values{"careers[in]": {"Business, UI/UX"}}, testFields)
	require.NoError(t, err)

	require.Len(t, lq.Conditions, 1)
	assert.Equal(t, []string{"Business", "UI/UX"}, lq.Conditions[0].Values)

	where, args := lq.WhereSQL()
	assert.Equal(t, "t.careers IN (?,?)", where)
	assert.Equal(t, []any{"Business", "UI/UX"}, args)
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	_, err := Parse(url.Values{"tuition[regex]": {".*"}}, testFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown filter operator "regex"`)

	_, err = Parse(url.Values{"tuition[ne]": {"1"}}, testFields)
	assert.Error(t, err)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse(url.Values{"password": {"x"}}, testFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "password"`)
}

func TestParseRejectsMalformedKey(t *testing.T) {
	_, err := Parse(url.Values{"tuition[lte": {"1"}}, testFields)
	assert.Error(t, err)
}

func TestParseSelectAlwaysIncludesID(t *testing.T) {
	lq, err := Parse(url.Values{"select": {"name,tuition,name"}}, testFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "tuition"}, lq.Select)

	_, err = Parse(url.Values{"select": {"name,secret"}}, testFields)
	assert.Error(t, err)
}

func TestParseSort(t *testing.T) {
	lq, err := Parse(url.Values{"sort": {"-averageCost,name"}}, testFields)
	require.NoError(t, err)
	require.Len(t, lq.Sort, 2)
	assert.Equal(t, SortKey{Field: "averageCost", Desc: true}, lq.Sort[0])
	assert.Equal(t, SortKey{Field: "name"}, lq.Sort[1])
	assert.Equal(t, "t.average_cost DESC, t.name ASC", lq.OrderSQL())

	_, err = Parse(url.Values{"sort": {"-secret"}}, testFields)
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	lq, err := Parse(url.Values{"page": {"3"}, "limit": {"10"}}, testFields)
	require.NoError(t, err)
	assert.Equal(t, 3, lq.Page)
	assert.Equal(t, 10, lq.Limit)
	assert.Equal(t, 20, lq.Offset())

	// Garbage and non-positive values fall back to defaults.
	lq, err = Parse(url.Values{"page": {"abc"}, "limit": {"0"}}, testFields)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, lq.Page)
	assert.Equal(t, DefaultLimit, lq.Limit)
}

func TestWhereSQLNeutralWithoutConditions(t *testing.T) {
	lq := &ListQuery{}
	where, args := lq.WhereSQL()
	assert.Equal(t, "1=1", where)
	assert.Nil(t, args)
}

// The default sort must carry the base-table alias: populated listings
// join a second table that also has a created_at column, and an
// unqualified ORDER BY would be ambiguous there.
func TestOrderSQLDefaultIsQualified(t *testing.T) {
	lq := &ListQuery{}
	assert.Equal(t, "t.created_at DESC", lq.OrderSQL())
}

func TestPaginate(t *testing.T) {
	mid := &ListQuery{Page: 2, Limit: 10}
	p := mid.Paginate(35)
	require.NotNil(t, p.Previous)
	require.NotNil(t, p.Next)
	assert.Equal(t, PageRef{Page: 1, Limit: 10}, *p.Previous)
	assert.Equal(t, PageRef{Page: 3, Limit: 10}, *p.Next)

	first := &ListQuery{Page: 1, Limit: 10}
	p = first.Paginate(35)
	assert.Nil(t, p.Previous)
	require.NotNil(t, p.Next)

	last := &ListQuery{Page: 4, Limit: 10}
	p = last.Paginate(35)
	require.NotNil(t, p.Previous)
	assert.Nil(t, p.Next)

	// A page boundary exactly at the total has no next page.
	exact := &ListQuery{Page: 2, Limit: 10}
	p = exact.Paginate(20)
	assert.Nil(t, p.Next)

	only := &ListQuery{Page: 1, Limit: 25}
	p = only.Paginate(3)
	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Next)
}
