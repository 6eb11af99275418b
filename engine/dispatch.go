package engine

import (
	"fmt"

	"github.com/harrison/sqlengine/ast"
	"github.com/harrison/sqlengine/auth"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/parser"
	"github.com/harrison/sqlengine/sqlvalue"
	"github.com/harrison/sqlengine/storage"
)

// userIDColumn is the column name the ownership overlay watches for, per
// spec §4.4 and §9.
const userIDColumn = "user_id"

// Execute parses sql, validates token when auth is enabled, and dispatches
// to storage per spec §4.4. Returns either []storage.ResultRow (SELECT,
// including the single supported JOIN shape) or an int affected-row
// count (every other statement kind).
func (db *DB) Execute(sql, token string) (interface{}, error) {
	var sess *auth.Session
	if db.authEnabled {
		s, err := db.authn.Validate(token)
		if err != nil {
			return nil, err
		}
		sess = &s
	}

	stmt, err := parser.Parse(sql)
	if err != nil {
		db.log.Error("parse failed: %v", err)
		return nil, err
	}

	result, err := db.dispatch(stmt, sess)
	if err != nil {
		db.log.Error("execute failed: %v", err)
		return nil, err
	}
	db.log.Info("executed %s on %q", statementKindName(stmt.Kind), stmt.Table)
	return result, nil
}

func (db *DB) dispatch(stmt *ast.Statement, sess *auth.Session) (interface{}, error) {
	switch stmt.Kind {
	case ast.CreateTable:
		return db.execCreateTable(stmt)
	case ast.DropTable:
		return db.execDropTable(stmt)
	case ast.Insert:
		return db.execInsert(stmt, sess)
	case ast.Select:
		return db.execSelect(stmt, sess)
	case ast.Update:
		return db.execUpdate(stmt, sess)
	case ast.Delete:
		return db.execDelete(stmt, sess)
	default:
		return nil, errkind.Newf(errkind.Schema, "unsupported statement kind %v", stmt.Kind)
	}
}

// execCreateTable resolves each column's raw dtype token into a
// sqlvalue.Dtype, raising a **schema** error for an unsupported dtype
// (spec §4.3) — the parser itself never validates this (spec §4.1).
func (db *DB) execCreateTable(stmt *ast.Statement) (interface{}, error) {
	columns := make([]storage.Column, len(stmt.Columns))
	for i, c := range stmt.Columns {
		dtype, ok := sqlvalue.ParseDtype(c.Dtype)
		if !ok {
			return nil, errkind.Newf(errkind.Schema, "unsupported dtype %q for column %q", c.Dtype, c.Name)
		}
		columns[i] = storage.Column{Name: c.Name, Dtype: dtype, Primary: c.Primary, Unique: c.Unique}
	}
	if _, err := db.catalog.CreateTable(stmt.Table, columns); err != nil {
		return nil, err
	}
	return 1, nil
}

// execDropTable removes the table from the catalog and deletes both its
// on-disk documents, resolving spec §9's open question the way
// original_source's distillation-dropped DROP TABLE path would if wired
// back in (see DESIGN.md).
func (db *DB) execDropTable(stmt *ast.Statement) (interface{}, error) {
	if err := db.catalog.DropTable(stmt.Table); err != nil {
		return nil, err
	}
	return 1, nil
}

func (db *DB) execInsert(stmt *ast.Statement, sess *auth.Session) (interface{}, error) {
	table, err := db.catalog.Table(stmt.Table)
	if err != nil {
		return nil, err
	}

	input := make(map[string]sqlvalue.Value, len(stmt.InsertColumns))
	for i, col := range stmt.InsertColumns {
		input[col] = stmt.InsertValues[i]
	}

	if db.authEnabled && sess != nil && hasColumn(table, userIDColumn) {
		if _, set := input[userIDColumn]; !set {
			input[userIDColumn] = sqlvalue.NewInt(sess.UserID)
		}
	}

	if _, err := table.Insert(input); err != nil {
		return nil, err
	}
	if err := table.Persist(db.catalog.Dir); err != nil {
		return nil, err
	}
	return 1, nil
}

func (db *DB) execSelect(stmt *ast.Statement, sess *auth.Session) (interface{}, error) {
	table, err := db.catalog.Table(stmt.Table)
	if err != nil {
		return nil, err
	}

	where, err := db.composeOwnership(table, stmt.Where, sess)
	if err != nil {
		return nil, err
	}

	if stmt.Join == nil {
		return table.Select(stmt.Projection, where)
	}
	return db.execJoin(table, stmt, where)
}

// execJoin implements the single supported JOIN shape (spec §4.4): a left
// table filtered by the ownership-composed WHERE, then for each surviving
// left row a lookup on the right table where
// right.<RightColumn> = left.<LeftColumn>, merging each pair into keys
// named "<table>.<column>".
func (db *DB) execJoin(left *storage.Table, stmt *ast.Statement, whereLeft *ast.Where) (interface{}, error) {
	right, err := db.catalog.Table(stmt.Join.Table)
	if err != nil {
		return nil, err
	}

	leftRows, err := left.Select([]string{"*"}, whereLeft)
	if err != nil {
		return nil, err
	}

	var merged []storage.ResultRow
	for _, lr := range leftRows {
		lv, ok := lr.Get(stmt.Join.LeftColumn)
		if !ok {
			return nil, errkind.Newf(errkind.Schema, "unknown column %q", stmt.Join.LeftColumn)
		}
		rightWhere := &ast.Where{Column: stmt.Join.RightColumn, Op: "=", Value: lv}
		rightRows, err := right.Select([]string{"*"}, rightWhere)
		if err != nil {
			return nil, err
		}
		for _, rr := range rightRows {
			merged = append(merged, mergeRows(left.Name, lr, right.Name, rr))
		}
	}

	return projectMerged(merged, stmt.Projection), nil
}

func mergeRows(leftName string, lr storage.ResultRow, rightName string, rr storage.ResultRow) storage.ResultRow {
	out := make(storage.ResultRow, 0, len(lr)+len(rr))
	for _, f := range lr {
		out = append(out, storage.Field{Name: fmt.Sprintf("%s.%s", leftName, f.Name), Value: f.Value})
	}
	for _, f := range rr {
		out = append(out, storage.Field{Name: fmt.Sprintf("%s.%s", rightName, f.Name), Value: f.Value})
	}
	return out
}

// projectMerged applies the JOIN's projection: "*" returns merged rows
// as-is; an explicit list selects merged keys by exact string match,
// yielding null for a key absent from the merge (mirrors the original's
// row.get(c) returning None for a missing key).
func projectMerged(rows []storage.ResultRow, projection []string) []storage.ResultRow {
	if len(projection) == 1 && projection[0] == "*" {
		return rows
	}
	out := make([]storage.ResultRow, len(rows))
	for i, row := range rows {
		rr := make(storage.ResultRow, len(projection))
		for j, name := range projection {
			v, ok := row.Get(name)
			if !ok {
				v = sqlvalue.NullValue
			}
			rr[j] = storage.Field{Name: name, Value: v}
		}
		out[i] = rr
	}
	return out
}

func (db *DB) execUpdate(stmt *ast.Statement, sess *auth.Session) (interface{}, error) {
	table, err := db.catalog.Table(stmt.Table)
	if err != nil {
		return nil, err
	}
	where, err := db.composeOwnership(table, stmt.Where, sess)
	if err != nil {
		return nil, err
	}
	n, err := table.Update(stmt.Assignments, where)
	if err != nil {
		return nil, err
	}
	if err := table.Persist(db.catalog.Dir); err != nil {
		return nil, err
	}
	return n, nil
}

func (db *DB) execDelete(stmt *ast.Statement, sess *auth.Session) (interface{}, error) {
	table, err := db.catalog.Table(stmt.Table)
	if err != nil {
		return nil, err
	}
	where, err := db.composeOwnership(table, stmt.Where, sess)
	if err != nil {
		return nil, err
	}
	n, err := table.Delete(where)
	if err != nil {
		return nil, err
	}
	if err := table.Persist(db.catalog.Dir); err != nil {
		return nil, err
	}
	return n, nil
}

// composeOwnership folds the ownership overlay into a caller WHERE per
// spec §4.4 and §9, grounded on original_source/minidb/db.py's
// `_and_where`: the overlay applies only when auth is enabled, the table
// carries a user_id column, and the session is non-admin. A caller WHERE
// already on user_id with "=" wins (deduplication); any other caller
// WHERE conflicts, since only one predicate is supported.
func (db *DB) composeOwnership(table *storage.Table, where *ast.Where, sess *auth.Session) (*ast.Where, error) {
	if !db.authEnabled || sess == nil {
		return where, nil
	}
	if !hasColumn(table, userIDColumn) {
		return where, nil
	}
	if db.isAdminUser(sess.UserID) {
		return where, nil
	}

	overlay := &ast.Where{Column: userIDColumn, Op: "=", Value: sqlvalue.NewInt(sess.UserID)}
	if where == nil {
		return overlay, nil
	}
	if where.Column == overlay.Column && where.Op == "=" && overlay.Op == "=" {
		return where, nil
	}
	return nil, errkind.New(errkind.Schema, "only one WHERE condition is supported")
}

func hasColumn(table *storage.Table, name string) bool {
	_, ok := table.ColumnByName(name)
	return ok
}

func statementKindName(k ast.Kind) string {
	switch k {
	case ast.CreateTable:
		return "CREATE_TABLE"
	case ast.DropTable:
		return "DROP_TABLE"
	case ast.Insert:
		return "INSERT"
	case ast.Select:
		return "SELECT"
	case ast.Update:
		return "UPDATE"
	case ast.Delete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}
