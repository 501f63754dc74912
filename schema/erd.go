package schema

import (
	"fmt"
	"strings"
)

// Mermaid renders the graph as a Mermaid ER diagram inside a markdown
// fenced block. Information schema rows carry no column types, so every
// attribute is typed "col"; foreign key columns are marked FK. Names are
// reduced to [A-Za-z0-9_] since Mermaid accepts nothing else unquoted.
func Mermaid(g Graph) string {
	var content strings.Builder

	content.WriteString("# Database Schema ERD\n\n")
	content.WriteString("```mermaid\nerDiagram\n")

	fkColumns := g.foreignKeyColumns()
	for _, table := range g.TableNames() {
		content.WriteString(fmt.Sprintf("    %s {\n", mermaidName(table)))
		for _, col := range g.Tables[table] {
			line := fmt.Sprintf("        col %s", mermaidName(col))
			if fkColumns[Key(table, col)] {
				line += " FK"
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("    }\n")
	}

	for _, e := range g.Edges() {
		content.WriteString(fmt.Sprintf("    %s ||--o{ %s : %s\n",
			mermaidName(e.ParentTable), mermaidName(e.ChildTable), mermaidLabel(e.ChildColumn)))
	}

	content.WriteString("```\n")
	return content.String()
}

// Graphviz renders the graph in DOT format with one record node per table
// and one edge per foreign key column, drawn parent to child.
func Graphviz(g Graph) string {
	var content strings.Builder

	content.WriteString("digraph ERD {\n")
	content.WriteString("  rankdir=LR;\n")
	content.WriteString("  node [shape=record];\n\n")

	for _, table := range g.TableNames() {
		content.WriteString(fmt.Sprintf("  %q [label=\"%s|", table, dotEscape(table)))
		cols := make([]string, len(g.Tables[table]))
		for i, col := range g.Tables[table] {
			cols[i] = dotEscape(col)
		}
		content.WriteString(strings.Join(cols, "\\l"))
		content.WriteString("\\l\"];\n")
	}

	for _, e := range g.Edges() {
		content.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.ParentTable, e.ChildTable, e.ChildColumn))
	}

	content.WriteString("}\n")
	return content.String()
}

func (g Graph) foreignKeyColumns() map[string]bool {
	cols := map[string]bool{}
	for _, children := range g.References {
		for _, c := range children {
			cols[c] = true
		}
	}
	return cols
}

func mermaidName(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
			b.WriteRune(r)
		case '0' <= r && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// mermaidLabel keeps plain identifiers bare and quotes everything else.
func mermaidLabel(s string) string {
	if s != "" && mermaidName(s) == s {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, "#quot;") + `"`
}

var dotReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "|", `\|`, "{", `\{`, "}", `\}`, "<", `\<`, ">", `\>`)

func dotEscape(s string) string {
	return dotReplacer.Replace(s)
}
