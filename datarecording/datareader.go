package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// ErrTableNotMapped is returned when a table is queried before MapTable.
var ErrTableNotMapped = errors.New("table not mapped")

// QueryParams selects and pages the rows of a table.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, with ? placeholders,
	// such as "Kind = ? AND EndTime > ?".
	Where string
	Args  []any

	// Limit caps the rows returned. Zero returns every row.
	Limit  int
	Offset int

	// OrderBy is a column list without the ORDER BY keywords.
	OrderBy string
}

// DataReader reads back what a DataRecorder stored.
type DataReader interface {
	// MapTable tells the reader that the rows of tableName decode into the
	// struct type of sampleEntry.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables in name order.
	ListTables() []string

	// Query returns the matching rows as struct values of the mapped type,
	// together with how many rows match when Limit and Offset are ignored.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	Close() error
}

type sqliteReader struct {
	*sql.DB

	lock    sync.RWMutex
	typeMap map[string]reflect.Type
}

// NewReader opens an existing recording for reading. The file name includes
// the .sqlite3 extension.
func NewReader(filename string) (DataReader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table %s must map to a struct, got %v",
			tableName, t))
	}

	r.lock.Lock()
	r.typeMap[tableName] = t
	r.lock.Unlock()
}

func (r *sqliteReader) ListTables() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tables := make([]string, 0, len(r.typeMap))
	for table := range r.typeMap {
		tables = append(tables, table)
	}

	slices.Sort(tables)

	return tables
}

func (r *sqliteReader) entryType(tableName string) (reflect.Type, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	t, ok := r.typeMap[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotMapped, tableName)
	}

	return t, nil
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, err := r.entryType(tableName)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM " + tableName + whereClause(params)
	err = r.QueryRowContext(ctx, countQuery, params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.QueryContext(ctx, selectQuery(tableName, params),
		params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	entries, err := decodeRows(rows, entryType)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", tableName, err)
	}

	return entries, total, nil
}

func whereClause(params QueryParams) string {
	if params.Where == "" {
		return ""
	}

	return " WHERE " + params.Where
}

func selectQuery(tableName string, params QueryParams) string {
	var q strings.Builder

	q.WriteString("SELECT * FROM ")
	q.WriteString(tableName)
	q.WriteString(whereClause(params))

	if params.OrderBy != "" {
		q.WriteString(" ORDER BY ")
		q.WriteString(params.OrderBy)
	}

	// SQLite only accepts OFFSET after a LIMIT. A negative limit is none.
	switch {
	case params.Limit > 0:
		fmt.Fprintf(&q, " LIMIT %d", params.Limit)
	case params.Offset > 0:
		q.WriteString(" LIMIT -1")
	}

	if params.Offset > 0 {
		fmt.Fprintf(&q, " OFFSET %d", params.Offset)
	}

	return q.String()
}

// decodeRows fills one struct per row. Columns match fields by name and
// columns without a field are skipped.
func decodeRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make([]int, len(columns))
	for i, column := range columns {
		fieldIndex[i] = -1
		if f, ok := entryType.FieldByName(column); ok && len(f.Index) == 1 {
			fieldIndex[i] = f.Index[0]
		}
	}

	entries := []any{}
	for rows.Next() {
		entry := reflect.New(entryType).Elem()
		targets := make([]any, len(columns))

		for i, idx := range fieldIndex {
			if idx < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		entries = append(entries, entry.Interface())
	}

	return entries, rows.Err()
}
