package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Column describes one result column.
type Column struct {
	Name string
	// TypeTag is the engine's canonical type name, e.g. "INT4" or "TIMESTAMPTZ".
	TypeTag string
	OID     uint32
	Format  int16
}

// ResultSet is a fully materialized query result. Rows hold the wire bytes
// of each cell; a nil entry is SQL NULL. A ResultSet returned by a pooled
// session decodes with that connection's type map, so decode it before the
// session is released.
type ResultSet struct {
	Columns []Column
	Rows    [][][]byte

	typeMap *pgtype.Map
}

// NewResultSet builds a ResultSet decoded with typeMap. A nil typeMap uses
// pgx's default type registrations.
func NewResultSet(typeMap *pgtype.Map, columns []Column, rows [][][]byte) *ResultSet {
	if typeMap == nil {
		typeMap = pgtype.NewMap()
	}
	return &ResultSet{Columns: columns, Rows: rows, typeMap: typeMap}
}

// Cell returns the cell at row, col.
func (rs *ResultSet) Cell(row, col int) Cell {
	c := rs.Columns[col]
	return Cell{raw: rs.Rows[row][col], oid: c.OID, format: c.Format, typeMap: rs.typeMap}
}

// Text reads the cell at row, col as a string.
func (rs *ResultSet) Text(row, col int) (string, error) {
	var s pgtype.Text
	if err := rs.Cell(row, col).Scan(&s); err != nil {
		return "", fmt.Errorf("column %q: %w", rs.Columns[col].Name, err)
	}
	if !s.Valid {
		return "", fmt.Errorf("column %q: unexpected NULL", rs.Columns[col].Name)
	}
	return s.String, nil
}

// ColumnIndex returns the position of the first column called name, or -1.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Cell is a single materialized cell. It satisfies encoder.Cell.
type Cell struct {
	raw     []byte
	oid     uint32
	format  int16
	typeMap *pgtype.Map
}

func (c Cell) Bytes() []byte { return c.raw }

// Scan decodes the cell into dst. A cell from a ResultSet built without a
// type map decodes with a fresh default map.
func (c Cell) Scan(dst any) error {
	m := c.typeMap
	if m == nil {
		m = pgtype.NewMap()
	}
	return m.Scan(c.oid, c.format, c.raw, dst)
}

var canonicalTags = map[uint32]string{
	pgtype.UUIDOID:        "UUID",
	pgtype.TextOID:        "TEXT",
	pgtype.VarcharOID:     "VARCHAR",
	pgtype.BPCharOID:      "CHAR",
	pgtype.DateOID:        "DATE",
	pgtype.TimestampOID:   "TIMESTAMP",
	pgtype.TimestamptzOID: "TIMESTAMPTZ",
	pgtype.Int2OID:        "INT2",
	pgtype.Int4OID:        "INT4",
	pgtype.Int8OID:        "INT8",
	pgtype.Float4OID:      "FLOAT4",
	pgtype.Float8OID:      "FLOAT8",
	pgtype.NumericOID:     "NUMERIC",
	pgtype.JSONOID:        "JSON",
	pgtype.JSONBOID:       "JSONB",
	pgtype.BoolOID:        "BOOL",
}

// TypeTag names the type behind oid. Types registered in typeMap but not in
// the canonical table are upper-cased (e.g. "INTERVAL"); unregistered types
// (enums, domains, extensions) yield "OID:<n>".
func TypeTag(typeMap *pgtype.Map, oid uint32) string {
	if tag, ok := canonicalTags[oid]; ok {
		return tag
	}
	if typeMap != nil {
		if t, ok := typeMap.TypeForOID(oid); ok {
			return strings.ToUpper(t.Name)
		}
	}
	return fmt.Sprintf("OID:%d", oid)
}
