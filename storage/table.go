package storage

import (
	"github.com/harrison/sqlengine/ast"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/sqlvalue"
)

// Row is a mapping from column name to Value. A Row always contains
// exactly the keys listed in its table's schema; absent keys are null.
type Row map[string]sqlvalue.Value

// Field is one (name, Value) pair in a projected result, kept in schema
// (or merge) order rather than a map so SELECT output never depends on Go's
// randomized map iteration.
type Field struct {
	Name  string
	Value sqlvalue.Value
}

// ResultRow is one row of SELECT / JOIN output, field order preserved.
type ResultRow []Field

// Get returns the value for name, or (Value{}, false) if absent.
func (r ResultRow) Get(name string) (sqlvalue.Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return sqlvalue.Value{}, false
}

// Table holds typed rows, their declared schema, and the unique-value
// indexes derived from it, per spec §3.
type Table struct {
	Name          string
	Columns       []Column
	Rows          []Row
	uniqueIndexes map[string]map[interface{}]int // column name -> value hash -> row position
	primaryCol    string                          // "" if no primary column
	dirty         bool
}

// NewTable builds an empty Table from a column list, enforcing the
// at-most-one-primary invariant and that a primary column is unique.
func NewTable(name string, columns []Column) (*Table, error) {
	t := &Table{Name: name, Columns: columns, uniqueIndexes: map[string]map[interface{}]int{}}

	seenPrimary := false
	for i := range columns {
		if columns[i].Primary {
			if seenPrimary {
				return nil, errkind.Newf(errkind.Schema, "table %q declares more than one primary column", name)
			}
			seenPrimary = true
			columns[i].Unique = true
			t.primaryCol = columns[i].Name
		}
		if columns[i].IsUniqueKey() {
			t.uniqueIndexes[columns[i].Name] = map[interface{}]int{}
		}
	}
	return t, nil
}

// ColumnByName returns the column descriptor for name, or ok=false.
func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the schema's column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Dirty reports whether the table has unpersisted mutations.
func (t *Table) Dirty() bool { return t.dirty }

// MarkClean clears the dirty flag after a successful persist.
func (t *Table) MarkClean() { t.dirty = false }

// Insert builds a validated row from input (coercing every schema column,
// absent keys yield null), rejects a null primary, rejects unique
// collisions, then appends the row and updates indexes. Nothing is
// mutated until every check has passed.
func (t *Table) Insert(input map[string]sqlvalue.Value) (Row, error) {
	row := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		raw, present := input[col.Name]
		if !present {
			raw = sqlvalue.NullValue
		}
		coerced, err := sqlvalue.Coerce(raw, col.Dtype)
		if err != nil {
			return nil, err
		}
		row[col.Name] = coerced
	}

	if t.primaryCol != "" && row[t.primaryCol].IsNull() {
		return nil, errkind.Newf(errkind.Constraint, "primary column %q cannot be null", t.primaryCol)
	}

	for col, idx := range t.uniqueIndexes {
		v := row[col]
		if v.IsNull() {
			continue
		}
		if _, exists := idx[v.HashKey()]; exists {
			return nil, errkind.Newf(errkind.Constraint, "duplicate value for unique column %q", col)
		}
	}

	pos := len(t.Rows)
	t.Rows = append(t.Rows, row)
	for col, idx := range t.uniqueIndexes {
		v := row[col]
		if !v.IsNull() {
			idx[v.HashKey()] = pos
		}
	}
	t.dirty = true
	return row, nil
}

// Select evaluates projection over rows matching where, taking the
// index-backed fast path when where is an "=" comparison against an
// indexed column, and the row scan otherwise.
func (t *Table) Select(projection []string, where *ast.Where) ([]ResultRow, error) {
	if err := t.validateProjection(projection); err != nil {
		return nil, err
	}

	var matched []Row
	if where != nil {
		if _, ok := t.ColumnByName(where.Column); !ok {
			return nil, errkind.Newf(errkind.Schema, "unknown column %q", where.Column)
		}
		if where.Op == "=" {
			if idx, ok := t.uniqueIndexes[where.Column]; ok {
				row, ok, err := t.fastLookup(idx, where)
				if err != nil {
					return nil, err
				}
				if ok {
					matched = []Row{row}
				}
			} else {
				rows, err := t.scan(where)
				if err != nil {
					return nil, err
				}
				matched = rows
			}
		} else {
			rows, err := t.scan(where)
			if err != nil {
				return nil, err
			}
			matched = rows
		}
	} else {
		matched = t.Rows
	}

	return t.project(matched, projection), nil
}

// fastLookup implements the equality fast path: coerce the RHS to the
// column's dtype and look it up directly in the unique index.
func (t *Table) fastLookup(idx map[interface{}]int, where *ast.Where) (Row, bool, error) {
	col, _ := t.ColumnByName(where.Column)
	rhs, err := sqlvalue.Coerce(where.Value, col.Dtype)
	if err != nil {
		return nil, false, err
	}
	if rhs.IsNull() {
		return nil, false, nil
	}
	pos, ok := idx[rhs.HashKey()]
	if !ok {
		return nil, false, nil
	}
	return t.Rows[pos], true, nil
}

// scan implements SELECT's slow path: a full row scan evaluating where
// against each row. Update and Delete apply the same matchesWhere test in
// their own row loops; Update does so even when the WHERE column is
// indexed (spec §4.3).
func (t *Table) scan(where *ast.Where) ([]Row, error) {
	col, ok := t.ColumnByName(where.Column)
	if !ok {
		return nil, errkind.Newf(errkind.Schema, "unknown column %q", where.Column)
	}
	rhs, err := sqlvalue.Coerce(where.Value, col.Dtype)
	if err != nil {
		return nil, err
	}

	var matched []Row
	for _, row := range t.Rows {
		ok, err := matchesWhere(row[where.Column], rhs, where.Op)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// matchesWhere applies the WHERE comparison semantics from spec §4.3: "="
// is structural equality including the both-non-null rule for null,
// "<"/">" require both operands non-null and use the dtype's natural
// order.
func matchesWhere(left, right sqlvalue.Value, op string) (bool, error) {
	switch op {
	case "=":
		if left.IsNull() || right.IsNull() {
			return false, nil
		}
		return left.Equal(right), nil
	case "<", ">":
		if left.IsNull() || right.IsNull() {
			return false, nil
		}
		return sqlvalue.Compare(left, right, op)
	default:
		return false, errkind.Newf(errkind.Schema, "unsupported operator %q", op)
	}
}

func (t *Table) validateProjection(projection []string) error {
	if len(projection) == 1 && projection[0] == "*" {
		return nil
	}
	for _, name := range projection {
		if _, ok := t.ColumnByName(name); !ok {
			return errkind.Newf(errkind.Schema, "unknown column %q", name)
		}
	}
	return nil
}

func (t *Table) project(rows []Row, projection []string) []ResultRow {
	cols := projection
	if len(projection) == 1 && projection[0] == "*" {
		cols = t.ColumnNames()
	}
	out := make([]ResultRow, len(rows))
	for i, row := range rows {
		rr := make(ResultRow, len(cols))
		for j, name := range cols {
			rr[j] = Field{Name: name, Value: row[name]}
		}
		out[i] = rr
	}
	return out
}

// Update applies assignments to every row matching where (always via the
// scan path per spec §4.3), building every candidate row before swapping
// any state in, then rebuilds unique indexes from scratch. Returns the
// number of affected rows.
func (t *Table) Update(assignments []ast.Assignment, where *ast.Where) (int, error) {
	for _, a := range assignments {
		if _, ok := t.ColumnByName(a.Column); !ok {
			return 0, errkind.Newf(errkind.Schema, "unknown column %q", a.Column)
		}
	}

	var matchedIdx []int
	if where != nil {
		col, ok := t.ColumnByName(where.Column)
		if !ok {
			return 0, errkind.Newf(errkind.Schema, "unknown column %q", where.Column)
		}
		rhs, err := sqlvalue.Coerce(where.Value, col.Dtype)
		if err != nil {
			return 0, err
		}
		for i, row := range t.Rows {
			ok, err := matchesWhere(row[where.Column], rhs, where.Op)
			if err != nil {
				return 0, err
			}
			if ok {
				matchedIdx = append(matchedIdx, i)
			}
		}
	} else {
		matchedIdx = make([]int, len(t.Rows))
		for i := range t.Rows {
			matchedIdx[i] = i
		}
	}

	candidates := make([]Row, len(t.Rows))
	copy(candidates, t.Rows)
	for _, i := range matchedIdx {
		candidate := make(Row, len(t.Columns))
		for k, v := range candidates[i] {
			candidate[k] = v
		}
		for _, a := range assignments {
			col, _ := t.ColumnByName(a.Column)
			coerced, err := sqlvalue.Coerce(a.Value, col.Dtype)
			if err != nil {
				return 0, err
			}
			candidate[a.Column] = coerced
		}
		if t.primaryCol != "" && candidate[t.primaryCol].IsNull() {
			return 0, errkind.Newf(errkind.Constraint, "primary column %q cannot be null", t.primaryCol)
		}
		candidates[i] = candidate
	}

	if err := t.rebuildIndexesFor(candidates); err != nil {
		return 0, err
	}

	t.Rows = candidates
	if len(matchedIdx) > 0 {
		t.dirty = true
	}
	return len(matchedIdx), nil
}

// Delete removes every row matching where, keeping a list of survivors and
// rebuilding indexes from scratch. Returns the number of removed rows.
func (t *Table) Delete(where *ast.Where) (int, error) {
	var kept []Row
	removed := 0

	if where == nil {
		removed = len(t.Rows)
	} else {
		col, ok := t.ColumnByName(where.Column)
		if !ok {
			return 0, errkind.Newf(errkind.Schema, "unknown column %q", where.Column)
		}
		rhs, err := sqlvalue.Coerce(where.Value, col.Dtype)
		if err != nil {
			return 0, err
		}
		for _, row := range t.Rows {
			ok, err := matchesWhere(row[where.Column], rhs, where.Op)
			if err != nil {
				return 0, err
			}
			if ok {
				removed++
			} else {
				kept = append(kept, row)
			}
		}
	}

	if err := t.rebuildIndexesFor(kept); err != nil {
		return 0, err
	}
	t.Rows = kept
	if removed > 0 {
		t.dirty = true
	}
	return removed, nil
}

// RebuildIndexes recomputes every unique index from the table's current
// rows. loadTable calls this after reading a rows document from disk;
// a collision there is treated as on-disk corruption and raised as
// **constraint**, per spec §4.3.
func (t *Table) RebuildIndexes() error {
	return t.rebuildIndexesFor(t.Rows)
}

// rebuildIndexesFor recomputes every unique index from rows alone,
// raising **constraint** on any collision. It does not mutate t.Rows or
// t.uniqueIndexes until the new indexes are fully built, so a failed
// rebuild leaves the table's current state untouched.
func (t *Table) rebuildIndexesFor(rows []Row) error {
	fresh := make(map[string]map[interface{}]int, len(t.uniqueIndexes))
	for col := range t.uniqueIndexes {
		fresh[col] = map[interface{}]int{}
	}

	for pos, row := range rows {
		if t.primaryCol != "" && row[t.primaryCol].IsNull() {
			return errkind.Newf(errkind.Constraint, "primary column %q cannot be null", t.primaryCol)
		}
		for col, idx := range fresh {
			v := row[col]
			if v.IsNull() {
				continue
			}
			key := v.HashKey()
			if _, exists := idx[key]; exists {
				return errkind.Newf(errkind.Constraint, "duplicate value for unique column %q", col)
			}
			idx[key] = pos
		}
	}

	t.uniqueIndexes = fresh
	return nil
}
