package dataset

// Row is one record of a delimited table, keyed by canonical column name
type Row map[string]string

// Table is an in-memory tabular dataset with a stable column order. The
// row pipeline filters and augments it in place; callers hand ownership to
// the pipeline and read the result back, so no external aliasing is
// observed.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates a table from a column list and rows
func New(columns []string, rows []Row) *Table {
	if rows == nil {
		rows = []Row{}
	}
	return &Table{
		Columns: append([]string(nil), columns...),
		Rows:    rows,
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn checks whether a column exists in the schema
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a new column with the given default value for every
// row. It does nothing if the column already exists.
func (t *Table) AddColumn(name, value string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, row := range t.Rows {
		row[name] = value
	}
}

// SetColumn overwrites the value of a column for every row, creating the
// column if it is absent.
func (t *Table) SetColumn(name, value string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for _, row := range t.Rows {
		row[name] = value
	}
}

// RenameColumn renames a column in the schema and in every row. It does
// nothing if the source column is absent.
func (t *Table) RenameColumn(from, to string) {
	if from == to || !t.HasColumn(from) {
		return
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
			break
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// Filter keeps only rows the predicate accepts, preserving the input
// order, and returns how many rows were dropped.
func (t *Table) Filter(keep func(Row) bool) int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped
}
