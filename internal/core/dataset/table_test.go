package dataset

import (
	"reflect"
	"testing"
)

func TestTable_AddColumn(t *testing.T) {
	table := New([]string{"a"}, []Row{{"a": "1"}, {"a": "2"}})

	table.AddColumn("b", "x")
	if !table.HasColumn("b") {
		t.Fatal("column b not added")
	}
	for _, row := range table.Rows {
		if row["b"] != "x" {
			t.Errorf("row b = %q, expected default %q", row["b"], "x")
		}
	}

	// Adding an existing column must not overwrite values.
	table.Rows[0]["b"] = "custom"
	table.AddColumn("b", "y")
	if table.Rows[0]["b"] != "custom" {
		t.Errorf("AddColumn overwrote existing value: %q", table.Rows[0]["b"])
	}
	if got := len(table.Columns); got != 2 {
		t.Errorf("schema has %d columns, expected 2", got)
	}
}

func TestTable_SetColumn(t *testing.T) {
	table := New([]string{"a"}, []Row{{"a": "1"}, {"a": "2"}})

	table.SetColumn("a", "z")
	for _, row := range table.Rows {
		if row["a"] != "z" {
			t.Errorf("row a = %q, expected %q", row["a"], "z")
		}
	}

	table.SetColumn("b", "w")
	if !table.HasColumn("b") || table.Rows[1]["b"] != "w" {
		t.Error("SetColumn did not create the new column for every row")
	}
}

func TestTable_RenameColumn(t *testing.T) {
	table := New([]string{"old", "other"}, []Row{{"old": "1", "other": "2"}})

	table.RenameColumn("old", "new")
	if !reflect.DeepEqual(table.Columns, []string{"new", "other"}) {
		t.Errorf("columns = %v, expected renamed schema", table.Columns)
	}
	if table.Rows[0]["new"] != "1" {
		t.Errorf("row value not carried over: %v", table.Rows[0])
	}
	if _, ok := table.Rows[0]["old"]; ok {
		t.Error("old key still present after rename")
	}

	// Renaming a missing column is a no-op.
	table.RenameColumn("absent", "whatever")
	if table.HasColumn("whatever") {
		t.Error("rename of absent column created a column")
	}
}

func TestTable_Filter(t *testing.T) {
	table := New([]string{"n"}, []Row{{"n": "1"}, {"n": "2"}, {"n": "3"}, {"n": "4"}})

	dropped := table.Filter(func(row Row) bool {
		return row["n"] == "2" || row["n"] == "4"
	})

	if dropped != 2 {
		t.Errorf("dropped = %d, expected 2", dropped)
	}
	if table.Len() != 2 {
		t.Fatalf("kept %d rows, expected 2", table.Len())
	}
	// Order preserved.
	if table.Rows[0]["n"] != "2" || table.Rows[1]["n"] != "4" {
		t.Errorf("row order changed: %v", table.Rows)
	}
}

func TestNew_NilRows(t *testing.T) {
	table := New([]string{"a"}, nil)
	if table.Rows == nil || table.Len() != 0 {
		t.Error("nil rows must yield an empty, non-nil row slice")
	}
}
