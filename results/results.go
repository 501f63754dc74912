package results

import (
	"encoding/json"

	"github.com/ridoystarlord/querycanvas/database"
	"github.com/ridoystarlord/querycanvas/encoder"
	"github.com/ridoystarlord/querycanvas/value"
)

// Field is one (column name, value) pair. It marshals as a two element
// JSON array.
type Field struct {
	Name  string
	Value value.Value
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.Name, f.Value})
}

// Row holds fields in column position order. Column names may repeat, so a
// Row is never keyed by name.
type Row []Field

// Encode converts every cell of rs into a Row. Cells that fail to decode
// become null without affecting their neighbours.
func Encode(rs *database.ResultSet) []Row {
	rows := make([]Row, len(rs.Rows))
	for i := range rs.Rows {
		row := make(Row, len(rs.Columns))
		for j, col := range rs.Columns {
			row[j] = Field{
				Name:  col.Name,
				Value: encoder.Encode(rs.Cell(i, j), col.TypeTag),
			}
		}
		rows[i] = row
	}
	return rows
}

// Marshal renders rows as `[[["col", value], ...], ...]`. An empty result
// renders as `[]`.
func Marshal(rows []Row) (string, error) {
	if rows == nil {
		rows = []Row{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Columns returns the column names of the first row, or nil for an empty
// result.
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	names := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		names[i] = f.Name
	}
	return names
}
