package repository

import (
	"context"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bootcamp-directory/internal/query"
)

var listerFields = query.FieldMap{
	"id":      "t.id",
	"name":    "t.name",
	"tuition": "t.tuition",
	"careers": "t.careers",
}

func newLister(t *testing.T) (Lister, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return Lister{DB: db, Table: "bootcamps", Fields: listerFields,
		JSONFields: map[string]bool{"careers": true}}, mock
}

func typedColumn(name, dbType string) *sqlmock.Column {
	return sqlmock.NewColumn(name).OfType(dbType, nil).Nullable(true)
}

func countRow(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestListerProjectionAndTotal(t *testing.T) {
	l, mock := newLister(t)

	lq, err := query.Parse(url.Values{
		"select":       {"name,tuition"},
		"tuition[lte]": {"10000"},
		"page":         {"2"},
		"limit":        {"2"},
	}, listerFields)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT(*) FROM bootcamps t WHERE t.tuition <= ?").
		WithArgs("10000").
		WillReturnRows(countRow(5))

	mock.ExpectQuery("SELECT t.id AS `id`, t.name AS `name`, t.tuition AS `tuition` "+
		"FROM bootcamps t WHERE t.tuition <= ? ORDER BY t.created_at DESC LIMIT ? OFFSET ?").
		WithArgs("10000", 2, 2).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			typedColumn("id", "BIGINT"),
			typedColumn("name", "VARCHAR"),
			typedColumn("tuition", "DOUBLE")).
			AddRow([]byte("3"), []byte("Devworks"), []byte("9500.5")).
			AddRow([]byte("4"), []byte("ModernTech"), []byte("8000")))

	rows, total, err := l.List(context.Background(), lq, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(5), total)
	require.Len(t, rows, 2)
	// Driver bytes come back typed by column.
	assert.Equal(t, int64(3), rows[0]["id"])
	assert.Equal(t, "Devworks", rows[0]["name"])
	assert.Equal(t, 9500.5, rows[0]["tuition"])
	assert.Equal(t, 8000.0, rows[1]["tuition"])
	assert.NotContains(t, rows[0], "careers")
}

// A VARCHAR whose content happens to look numeric must serialize as a
// string, matching what GetByID returns for the same row.
func TestListerKeepsNumericLookingStrings(t *testing.T) {
	l, mock := newLister(t)

	lq, err := query.Parse(url.Values{"select": {"name"}}, listerFields)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT(*) FROM bootcamps t WHERE 1=1").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT t.id AS `id`, t.name AS `name` "+
		"FROM bootcamps t WHERE 1=1 ORDER BY t.created_at DESC LIMIT ? OFFSET ?").
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			typedColumn("id", "BIGINT"),
			typedColumn("name", "VARCHAR")).
			AddRow([]byte("1"), []byte("2024")))

	rows, _, err := l.List(context.Background(), lq, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "2024", rows[0]["name"])
}

func TestListerDecodesJSONColumns(t *testing.T) {
	l, mock := newLister(t)

	lq, err := query.Parse(url.Values{"select": {"careers"}}, listerFields)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT(*) FROM bootcamps t WHERE 1=1").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT t.id AS `id`, t.careers AS `careers` "+
		"FROM bootcamps t WHERE 1=1 ORDER BY t.created_at DESC LIMIT ? OFFSET ?").
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			typedColumn("id", "BIGINT"),
			typedColumn("careers", "JSON")).
			AddRow([]byte("1"), []byte(`["Web Development","Data Science"]`)))

	rows, _, err := l.List(context.Background(), lq, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"Web Development", "Data Science"}, rows[0]["careers"])
}

// The default sort must stay qualified on the populated path: the
// joined table has a created_at column of its own, and an unqualified
// ORDER BY created_at would be ambiguous there.
func TestListerPopulateFoldsNestedRecord(t *testing.T) {
	l, mock := newLister(t)
	l.Table = "courses"
	l.Fields = query.FieldMap{"id": "t.id", "title": "t.title"}
	l.JSONFields = nil

	lq, err := query.Parse(url.Values{}, l.Fields)
	require.NoError(t, err)

	pop := &Populate{
		Table:      "bootcamps",
		ForeignKey: "bootcamp_id",
		As:         "bootcamp",
		Fields:     query.FieldMap{"id": "p.id", "name": "p.name"},
		Select:     []string{"id", "name"},
	}

	mock.ExpectQuery("SELECT COUNT(*) FROM courses t WHERE 1=1").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT t.id AS `id`, t.title AS `title`, "+
		"p.id AS `__pop_id`, p.name AS `__pop_name` "+
		"FROM courses t LEFT JOIN bootcamps p ON p.id = t.bootcamp_id "+
		"WHERE 1=1 ORDER BY t.created_at DESC LIMIT ? OFFSET ?").
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			typedColumn("id", "BIGINT"),
			typedColumn("title", "VARCHAR"),
			typedColumn("__pop_id", "BIGINT"),
			typedColumn("__pop_name", "VARCHAR")).
			AddRow([]byte("7"), []byte("Front End Web Development"), []byte("2"), []byte("Devworks")))

	rows, _, err := l.List(context.Background(), lq, pop)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, rows, 1)

	assert.NotContains(t, rows[0], "__pop_id")
	nested, ok := rows[0]["bootcamp"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), nested["id"])
	assert.Equal(t, "Devworks", nested["name"])
}
