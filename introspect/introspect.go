package introspect

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ridoystarlord/querycanvas/database"
)

// ColumnRow is one (table, column) pair from information_schema.columns.
type ColumnRow struct {
	Table  string
	Column string
}

// ForeignKeyRow is one column pairing of a foreign key constraint: the child
// column holding the key and the parent column it references.
type ForeignKeyRow struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ErrInvalidSchema is returned when the configured schema name is not a plain identifier.
var ErrInvalidSchema = errors.New("invalid schema name")

// Columns are ordered by table then declaration order so the schema map
// lists each table's columns the way they were declared.
const columnsQuery = `
	SELECT c.table_name::text, c.column_name::text
	FROM information_schema.columns c
	WHERE c.table_schema = '%s'
	ORDER BY c.table_name, c.ordinal_position;
	`

// Composite keys pair child and parent columns by position instead of
// producing a cross product of every column in the constraint.
const foreignKeysQuery = `
	SELECT
		kcu.table_name::text AS referencing_table,
		kcu.column_name::text AS referencing_column,
		pk.table_name::text AS referenced_table,
		pk.column_name::text AS referenced_column
	FROM information_schema.referential_constraints AS rc
	JOIN information_schema.key_column_usage AS kcu
		ON kcu.constraint_schema = rc.constraint_schema
		AND kcu.constraint_name = rc.constraint_name
	JOIN information_schema.key_column_usage AS pk
		ON pk.constraint_schema = rc.unique_constraint_schema
		AND pk.constraint_name = rc.unique_constraint_name
		AND pk.ordinal_position = kcu.position_in_unique_constraint
	WHERE rc.constraint_schema = '%s'
	ORDER BY kcu.table_name, rc.constraint_name, kcu.ordinal_position;
	`

// Columns lists every column of every table in schema.
func Columns(ctx context.Context, sess database.Session, schema string) ([]ColumnRow, error) {
	if !identPattern.MatchString(schema) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}

	rs, err := sess.Execute(ctx, fmt.Sprintf(columnsQuery, schema))
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}

	columns := make([]ColumnRow, 0, len(rs.Rows))
	for i := range rs.Rows {
		var row ColumnRow
		if row.Table, err = rs.Text(i, 0); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		if row.Column, err = rs.Text(i, 1); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, row)
	}

	return columns, nil
}

// ForeignKeys lists every foreign key column pairing declared in schema.
func ForeignKeys(ctx context.Context, sess database.Session, schema string) ([]ForeignKeyRow, error) {
	if !identPattern.MatchString(schema) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}

	rs, err := sess.Execute(ctx, fmt.Sprintf(foreignKeysQuery, schema))
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}

	names := []string{"referencing_table", "referencing_column", "referenced_table", "referenced_column"}
	idx := make([]int, len(names))
	for i, name := range names {
		if idx[i] = rs.ColumnIndex(name); idx[i] < 0 {
			return nil, fmt.Errorf("foreign key result is missing column %q", name)
		}
	}

	foreignKeys := make([]ForeignKeyRow, 0, len(rs.Rows))
	for i := range rs.Rows {
		var vals [4]string
		for j, col := range idx {
			if vals[j], err = rs.Text(i, col); err != nil {
				return nil, fmt.Errorf("scanning foreign key: %w", err)
			}
		}
		foreignKeys = append(foreignKeys, ForeignKeyRow{
			ChildTable:   vals[0],
			ChildColumn:  vals[1],
			ParentTable:  vals[2],
			ParentColumn: vals[3],
		})
	}

	return foreignKeys, nil
}
