package schema

import (
	"strings"
	"testing"

	"github.com/ridoystarlord/querycanvas/introspect"
)

func sampleGraph() Graph {
	return Build(
		[]introspect.ColumnRow{
			{Table: "users", Column: "id"},
			{Table: "orders", Column: "id"},
			{Table: "orders", Column: "user_id"},
		},
		[]introspect.ForeignKeyRow{
			{ChildTable: "orders", ChildColumn: "user_id", ParentTable: "users", ParentColumn: "id"},
		},
	)
}

func TestMermaid(t *testing.T) {
	t.Parallel()

	out := Mermaid(sampleGraph())

	for _, want := range []string{
		"```mermaid\nerDiagram\n",
		"    orders {\n        col id\n        col user_id FK\n    }\n",
		"    users {\n        col id\n    }\n",
		"    users ||--o{ orders : user_id\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	if strings.Index(out, "orders {") > strings.Index(out, "users {") {
		t.Fatal("expected tables in name order")
	}
}

func TestMermaid_UnsafeNames(t *testing.T) {
	t.Parallel()

	g := Build(
		[]introspect.ColumnRow{
			{Table: "order items", Column: "unit-price"},
			{Table: "order items", Column: "2nd owner"},
			{Table: "people", Column: "id"},
		},
		[]introspect.ForeignKeyRow{
			{ChildTable: "order items", ChildColumn: "2nd owner", ParentTable: "people", ParentColumn: "id"},
		},
	)

	out := Mermaid(g)
	for _, want := range []string{
		"    order_items {\n        col unit_price\n        col _2nd_owner FK\n    }\n",
		`    people ||--o{ order_items : "2nd owner"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "order items {") {
		t.Fatalf("expected table names to be sanitised, got:\n%s", out)
	}
}

func TestMermaidName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"users":      "users",
		"user_id":    "user_id",
		"my-table":   "my_table",
		"2fa":        "_2fa",
		"héllo":      "h_llo",
		"":           "_",
		`with"quote`: "with_quote",
	}
	for in, want := range tests {
		if got := mermaidName(in); got != want {
			t.Errorf("mermaidName(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestGraphviz(t *testing.T) {
	t.Parallel()

	out := Graphviz(sampleGraph())

	for _, want := range []string{
		"digraph ERD {\n",
		`  "orders" [label="orders|id\luser_id\l"];`,
		`  "users" -> "orders" [label="user_id"];`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDotEscape(t *testing.T) {
	t.Parallel()

	if got := dotEscape(`a|b"{c}`); got != `a\|b\"\{c\}` {
		t.Fatalf("unexpected escape %q", got)
	}
}
