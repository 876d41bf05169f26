// Package query translates URL query strings into typed, allow-listed
// database queries: filtering with comparison operators, projection,
// sorting and pagination. It is the core of the list endpoints; the
// repositories render the parsed query into SQL placeholders.
//
// Known limitation carried over from the observable contract: the
// reserved keys "select", "sort", "page" and "limit" control the query
// and can never be used as filterable field names.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Op is a comparison operator allowed inside bracket syntax, e.g.
// tuition[lte]=10000. Anything outside this set is rejected.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// FieldMap lists the fields clients may filter, sort and select on,
// mapping the exposed JSON name to the underlying table column.
type FieldMap map[string]string

// Condition is a single comparison constraint. Values holds one entry
// except for OpIn, where it holds the comma-split set.
type Condition struct {
	Field  string // exposed name, key into the FieldMap
	Op     Op
	Values []string
}

// SortKey is one ORDER BY component.
type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery is the parsed form of a list request's query string.
type ListQuery struct {
	Conditions []Condition
	Select     []string // exposed names; empty means all fields
	Sort       []SortKey
	Page       int
	Limit      int

	fields FieldMap
}

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

// Parse builds a ListQuery from raw query parameters. Unknown fields
// and unknown bracket operators are errors so that typos fail loudly
// instead of silently matching nothing.
func Parse(vals url.Values, fields FieldMap) (*ListQuery, error) {
	lq := &ListQuery{Page: DefaultPage, Limit: DefaultLimit, fields: fields}

	for key, raw := range vals {
		if reserved[key] || len(raw) == 0 {
			continue
		}
		field, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if _, ok := fields[field]; !ok {
			return nil, fmt.Errorf("cannot filter on unknown field %q", field)
		}
		values := []string{raw[0]}
		if op == OpIn {
			values = splitList(raw[0])
		}
		lq.Conditions = append(lq.Conditions, Condition{Field: field, Op: op, Values: values})
	}

	if sel := vals.Get("select"); sel != "" {
		seen := map[string]bool{"id": true}
		lq.Select = []string{"id"} // identifier is always returned
		for _, f := range splitList(sel) {
			if _, ok := fields[f]; !ok {
				return nil, fmt.Errorf("cannot select unknown field %q", f)
			}
			if !seen[f] {
				seen[f] = true
				lq.Select = append(lq.Select, f)
			}
		}
	}

	if sort := vals.Get("sort"); sort != "" {
		for _, f := range splitList(sort) {
			key := SortKey{Field: f}
			if strings.HasPrefix(f, "-") {
				key = SortKey{Field: f[1:], Desc: true}
			}
			if _, ok := fields[key.Field]; !ok {
				return nil, fmt.Errorf("cannot sort on unknown field %q", key.Field)
			}
			lq.Sort = append(lq.Sort, key)
		}
	}

	if n, err := strconv.Atoi(vals.Get("page")); err == nil && n > 0 {
		lq.Page = n
	}
	if n, err := strconv.Atoi(vals.Get("limit")); err == nil && n > 0 {
		lq.Limit = n
	}
	return lq, nil
}

// splitKey separates "tuition[lte]" into field and operator. A bare key
// means equality.
func splitKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") {
		return "", "", fmt.Errorf("malformed filter key %q", key)
	}
	field := key[:open]
	op := Op(key[open+1 : len(key)-1])
	switch op {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return field, op, nil
	default:
		return "", "", fmt.Errorf("unknown filter operator %q on field %q", op, field)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WhereSQL renders the conditions as an AND-joined clause with
// placeholder args. With no conditions it yields the neutral "1=1".
func (lq *ListQuery) WhereSQL() (string, []any) {
	if len(lq.Conditions) == 0 {
		return "1=1", nil
	}
	clauses := make([]string, 0, len(lq.Conditions))
	args := make([]any, 0, len(lq.Conditions))
	for _, cond := range lq.Conditions {
		col := lq.fields[cond.Field]
		if cond.Op == OpIn {
			marks := strings.TrimSuffix(strings.Repeat("?,", len(cond.Values)), ",")
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, marks))
			for _, v := range cond.Values {
				args = append(args, v)
			}
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", col, sqlOps[cond.Op]))
		args = append(args, cond.Values[0])
	}
	return strings.Join(clauses, " AND "), args
}

// OrderSQL renders the ORDER BY clause body. Default order is newest
// first; the column is qualified with the base-table alias so joins
// with a created_at of their own stay unambiguous.
func (lq *ListQuery) OrderSQL() string {
	if len(lq.Sort) == 0 {
		return "t.created_at DESC"
	}
	parts := make([]string, 0, len(lq.Sort))
	for _, k := range lq.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, lq.fields[k.Field]+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// Offset is the number of rows skipped before the current page.
func (lq *ListQuery) Offset() int { return (lq.Page - 1) * lq.Limit }

// Page references a neighbouring page in pagination metadata.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination is the prev/next block of a list envelope. A side is
// omitted when there is no page in that direction.
type Pagination struct {
	Previous *PageRef `json:"previous,omitempty"`
	Next     *PageRef `json:"next,omitempty"`
}

// Paginate derives the metadata from the filtered (pre-pagination)
// total.
func (lq *ListQuery) Paginate(total int64) Pagination {
	var p Pagination
	if lq.Page > 1 {
		p.Previous = &PageRef{Page: lq.Page - 1, Limit: lq.Limit}
	}
	if int64(lq.Page*lq.Limit) < total {
		p.Next = &PageRef{Page: lq.Page + 1, Limit: lq.Limit}
	}
	return p
}
