package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// ErrMultipleStatements rejects input holding more than one statement; the
// driver would run them all and return only the last result.
var ErrMultipleStatements = errors.New("only one SQL statement per query is supported")

// QueryError is a failed statement. It is reported back to the model as
// text rather than ending the session.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Result holds the rows of one statement in result-set order.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Row returns row i as a column name to value mapping.
func (r *Result) Row(i int) map[string]any {
	m := make(map[string]any, len(r.Columns))
	for j, c := range r.Columns {
		m[c] = r.Rows[i][j]
	}
	return m
}

// String renders one JSON object per row, keys in column order.
func (r *Result) String() string {
	if len(r.Rows) == 0 {
		return "(0 rows)"
	}
	var b strings.Builder
	for _, row := range r.Rows {
		b.WriteByte('{')
		for j, c := range r.Columns {
			if j > 0 {
				b.WriteByte(',')
			}
			key, _ := json.Marshal(c)
			val, err := json.Marshal(row[j])
			if err != nil {
				val, _ = json.Marshal(fmt.Sprint(row[j]))
			}
			b.Write(key)
			b.WriteByte(':')
			b.Write(val)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// Execute runs one statement exactly as given, mutating ones included.
// Nothing is sanitized; this is the only entry point model-written SQL
// reaches. Input with more than one statement is rejected unexecuted.
func (d *DB) Execute(ctx context.Context, query string) (*Result, error) {
	fmt.Fprintf(d.audit, "Query: %s\n", query)

	if n := countStatements(query); n > 1 {
		return nil, &QueryError{Query: query, Err: fmt.Errorf("%w (got %d)", ErrMultipleStatements, n)}
	}

	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		d.log.Debug("query failed", zap.String("query", query), zap.Error(err))
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = blobValue(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	d.log.Debug("query executed",
		zap.String("rows", humanize.Comma(int64(res.Len()))),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// blobValue keeps UTF-8 blobs readable and renders the rest as an SQL
// blob literal, so no bytes are lost in the JSON output.
func blobValue(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return fmt.Sprintf("x'%X'", b)
}

// FormatResult renders a query outcome as the text fed back to the model.
func FormatResult(res *Result, err error) string {
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return res.String()
}
