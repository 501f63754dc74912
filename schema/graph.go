package schema

import (
	"sort"
	"strings"

	"github.com/ridoystarlord/querycanvas/introspect"
)

// Tables maps a table name to its column names in first-seen order.
type Tables map[string][]string

// References maps a referenced key "<table>.<column>" to every
// "<table>.<column>" holding a foreign key to it. Edges run parent to child,
// the reverse of the constraint's own direction.
type References map[string][]string

// Graph is the structural map served to the schema explorer.
type Graph struct {
	Tables     Tables     `json:"tables" yaml:"tables"`
	References References `json:"references" yaml:"references"`
}

// Key joins a table and column the way References does.
func Key(table, column string) string {
	return table + "." + column
}

// SplitKey undoes Key. Table names may not contain dots; column names may.
func SplitKey(key string) (table, column string, ok bool) {
	table, column, found := strings.Cut(key, ".")
	if !found || table == "" || column == "" {
		return "", "", false
	}
	return table, column, true
}

// Build folds flat introspection rows into a Graph. Order is taken from the
// input as given; nothing is sorted or deduplicated, so a composite key
// contributes one edge per column pair.
func Build(columns []introspect.ColumnRow, foreignKeys []introspect.ForeignKeyRow) Graph {
	g := Graph{
		Tables:     Tables{},
		References: References{},
	}

	for _, c := range columns {
		g.Tables[c.Table] = append(g.Tables[c.Table], c.Column)
	}

	for _, fk := range foreignKeys {
		referenced := Key(fk.ParentTable, fk.ParentColumn)
		g.References[referenced] = append(g.References[referenced], Key(fk.ChildTable, fk.ChildColumn))
	}

	return g
}

// Dependents returns the keys that hold a foreign key to table.column.
func (g Graph) Dependents(table, column string) []string {
	return g.References[Key(table, column)]
}

// Referenced returns the keys that table.column points at through its own
// foreign keys. It scans every edge, so it is linear in the graph size.
func (g Graph) Referenced(table, column string) []string {
	child := Key(table, column)

	var parents []string
	for parent, children := range g.References {
		for _, c := range children {
			if c == child {
				parents = append(parents, parent)
			}
		}
	}
	sort.Strings(parents)
	return parents
}

// TableNames returns the table names sorted.
func (g Graph) TableNames() []string {
	names := make([]string, 0, len(g.Tables))
	for name := range g.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edge is a single child to parent foreign key column pairing.
type Edge struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// Edges flattens References into child to parent pairs ordered by parent key.
func (g Graph) Edges() []Edge {
	parents := make([]string, 0, len(g.References))
	for p := range g.References {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	var edges []Edge
	for _, p := range parents {
		pt, pc, ok := SplitKey(p)
		if !ok {
			continue
		}
		for _, child := range g.References[p] {
			ct, cc, ok := SplitKey(child)
			if !ok {
				continue
			}
			edges = append(edges, Edge{ChildTable: ct, ChildColumn: cc, ParentTable: pt, ParentColumn: pc})
		}
	}
	return edges
}
