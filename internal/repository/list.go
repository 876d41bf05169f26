package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/bootcamp-directory/internal/query"
)

// Populate describes a caller-supplied expansion of a reference field
// into the referenced table's sub-selected fields. Clients cannot
// request arbitrary populates; handlers decide per route.
type Populate struct {
	Table      string         // referenced table, joined as p
	ForeignKey string         // column on the base table holding p.id
	As         string         // output key receiving the nested record
	Fields     query.FieldMap // exposed name -> column on p
	Select     []string       // exposed names to include, id implied
}

// Lister executes parsed list queries against one table and returns
// rows as ordered maps so that projections serialize exactly what was
// selected. The base table is always aliased t; FieldMap values are
// expected to carry that prefix.
type Lister struct {
	DB     *sql.DB
	Table  string
	Fields query.FieldMap

	// JSONFields are columns stored as JSON documents; their raw
	// bytes are unmarshalled instead of being returned as strings.
	JSONFields map[string]bool
}

// List runs the filtered, sorted, paginated query plus the matching
// COUNT(*), returning the page of records and the pre-pagination
// total.
func (l *Lister) List(ctx context.Context, lq *query.ListQuery, pop *Populate) ([]map[string]any, int64, error) {
	where, args := lq.WhereSQL()

	var total int64
	countSQL := "SELECT COUNT(*) FROM " + l.Table + " t WHERE " + where
	if err := l.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selected := lq.Select
	if len(selected) == 0 {
		selected = allFields(l.Fields)
	}

	cols := make([]string, 0, len(selected)+4)
	for _, f := range selected {
		cols = append(cols, l.Fields[f]+" AS `"+f+"`")
	}

	join := ""
	var popSelected []string
	if pop != nil {
		popSelected = pop.Select
		if len(popSelected) == 0 {
			popSelected = allFields(pop.Fields)
		}
		for _, f := range popSelected {
			cols = append(cols, pop.Fields[f]+" AS `__pop_"+f+"`")
		}
		join = " LEFT JOIN " + pop.Table + " p ON p.id = t." + pop.ForeignKey
	}

	dataSQL := "SELECT " + strings.Join(cols, ", ") +
		" FROM " + l.Table + " t" + join +
		" WHERE " + where +
		" ORDER BY " + lq.OrderSQL() +
		" LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), lq.Limit, lq.Offset())

	rows, err := l.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, 0, err
	}
	numeric := make([]bool, len(names))
	for i, ct := range types {
		numeric[i] = numericType(ct.DatabaseTypeName())
	}

	out := make([]map[string]any, 0, lq.Limit)
	for rows.Next() {
		raw := make([]any, len(names))
		for i := range raw {
			raw[i] = new(any)
		}
		if err := rows.Scan(raw...); err != nil {
			return nil, 0, err
		}

		rec := make(map[string]any, len(names))
		var nested map[string]any
		for i, name := range names {
			v := decodeValue(*(raw[i].(*any)), l.JSONFields[name], numeric[i])
			if strings.HasPrefix(name, "__pop_") {
				if nested == nil {
					nested = make(map[string]any, len(popSelected))
				}
				nested[strings.TrimPrefix(name, "__pop_")] = v
				continue
			}
			rec[name] = v
		}
		if pop != nil && nested != nil {
			rec[pop.As] = nested
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// allFields returns every exposed name with id first, the rest in
// stable (sorted) order so responses don't reorder between calls.
func allFields(fm query.FieldMap) []string {
	out := make([]string, 0, len(fm))
	for f := range fm {
		if f != "id" {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	if _, ok := fm["id"]; ok {
		out = append([]string{"id"}, out...)
	}
	return out
}

// numericType reports whether a driver column type holds numbers. Only
// these columns get number-parsed; a VARCHAR whose content happens to
// look numeric must stay a string.
func numericType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		return true
	}
	return false
}

// decodeValue converts driver values into JSON-friendly ones. MySQL
// returns most columns as []byte; numeric columns are recovered by
// their declared type, JSON columns unmarshalled, everything else kept
// as strings.
func decodeValue(v any, isJSON, numeric bool) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if isJSON {
		var doc any
		if err := json.Unmarshal(b, &doc); err == nil {
			return doc
		}
		return string(b)
	}
	s := string(b)
	if numeric {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
