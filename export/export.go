package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/querycanvas/results"
	"github.com/ridoystarlord/querycanvas/value"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatSQL  Format = "sql"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSQL:
		return FormatSQL, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q. Supported formats: csv, json, sql, yaml", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatSQL:
		return "text/plain"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Render writes rows in format f. table is only used by FormatSQL.
func Render(f Format, table string, rows []results.Row) (string, error) {
	switch f {
	case FormatCSV:
		return CSV(rows)
	case FormatJSON:
		return Objects(rows)
	case FormatSQL:
		return SQL(table, rows)
	case FormatYAML:
		return YAML(rows)
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}

// CSV renders rows with a header taken from the first row. Nulls are empty
// fields. An empty result renders as the empty string.
func CSV(rows []results.Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(results.Columns(rows)); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, 0, len(rows[0]))
	for _, row := range rows {
		record = record[:0]
		for _, f := range row {
			record = append(record, f.Value.String())
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Objects renders each row as a JSON object keyed by column name. When a
// name repeats, the later value wins but the key keeps its first position.
func Objects(rows []results.Row) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, row := range rows {
		if i > 0 {
			buf.WriteString(",")
		}
		if err := writeObject(&buf, row); err != nil {
			return "", err
		}
	}
	buf.WriteString("]")
	return buf.String(), nil
}

func writeObject(buf *bytes.Buffer, row results.Row) error {
	var order []string
	vals := make(map[string]value.Value, len(row))
	for _, f := range row {
		if _, seen := vals[f.Name]; !seen {
			order = append(order, f.Name)
		}
		vals[f.Name] = f.Value
	}

	buf.WriteString("{")
	for i, name := range order {
		if i > 0 {
			buf.WriteString(",")
		}
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		v, err := json.Marshal(vals[name])
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		buf.Write(k)
		buf.WriteString(":")
		buf.Write(v)
	}
	buf.WriteString("}")
	return nil
}

// YAML renders rows as a sequence of mappings in column order. Repeated
// names behave as in Objects.
func YAML(rows []results.Row) (string, error) {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		obj := &yaml.Node{Kind: yaml.MappingNode}
		index := make(map[string]int, len(row))
		for _, f := range row {
			val := &yaml.Node{}
			if err := val.Encode(f.Value.Interface()); err != nil {
				return "", fmt.Errorf("column %q: %w", f.Name, err)
			}
			if i, seen := index[f.Name]; seen {
				obj.Content[i+1] = val
				continue
			}
			index[f.Name] = len(obj.Content)
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
			obj.Content = append(obj.Content, key, val)
		}
		doc.Content = append(doc.Content, obj)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("YAML serialization failed: %w", err)
	}
	return string(out), nil
}

// SQL renders rows as INSERT statements into table.
func SQL(table string, rows []results.Row) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table name required for sql export")
	}

	var result strings.Builder

	result.WriteString("-- Export of " + table + "\n")
	result.WriteString("-- Generated by querycanvas\n\n")

	for _, row := range rows {
		result.WriteString("INSERT INTO " + quoteIdent(table) + " (")
		for i, f := range row {
			if i > 0 {
				result.WriteString(", ")
			}
			result.WriteString(quoteIdent(f.Name))
		}
		result.WriteString(") VALUES (")
		for i, f := range row {
			if i > 0 {
				result.WriteString(", ")
			}
			result.WriteString(sqlLiteral(f.Value))
		}
		result.WriteString(");\n")
	}

	return result.String(), nil
}

func sqlLiteral(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "NULL"
	case value.KindBool, value.KindInt64, value.KindDecimal:
		return v.String()
	default:
		return "'" + escapeSQLString(v.String()) + "'"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeSQLString(str string) string {
	return strings.ReplaceAll(str, "'", "''")
}
