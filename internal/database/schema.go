package database

import (
	"context"
	"fmt"
	"strings"
)

// Table is one table name and its columns in declared order.
type Table struct {
	Name    string
	Columns []string
}

// Schema is the ordered list of tables in the catalog.
type Schema []Table

// String renders the schema in the form embedded in the tool description:
// "Table: <name>\nColumns: <c1>, <c2>\n" per table.
func (s Schema) String() string {
	var b strings.Builder
	for _, t := range s {
		fmt.Fprintf(&b, "Table: %s\nColumns: %s\n", t.Name, strings.Join(t.Columns, ", "))
	}
	return b.String()
}

// Schema lists every table in the catalog and its columns. Order is the
// catalog's own, which is stable for an unmodified database.
func (d *DB) Schema(ctx context.Context) (Schema, error) {
	names, err := d.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	schema := make(Schema, 0, len(names))
	for _, name := range names {
		cols, err := d.columnNames(ctx, name)
		if err != nil {
			return nil, err
		}
		schema = append(schema, Table{Name: name, Columns: cols})
	}
	return schema, nil
}

// tableNames fully drains its rows before returning; the handle has a
// single connection, so column lookups cannot overlap with it.
func (d *DB) tableNames(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return names, nil
}

func (d *DB) columnNames(ctx context.Context, table string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("describing table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("describing table %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describing table %s: %w", table, err)
	}
	return cols, nil
}
