package storage

import (
	"testing"

	"github.com/harrison/sqlengine/ast"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/sqlvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("t", []Column{
		{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
		{Name: "name", Dtype: sqlvalue.DtString},
		{Name: "price", Dtype: sqlvalue.DtFloat},
	})
	require.NoError(t, err)
	return tbl
}

func TestNewTableAtMostOnePrimary(t *testing.T) {
	_, err := NewTable("t", []Column{
		{Name: "a", Dtype: sqlvalue.DtInt, Primary: true},
		{Name: "b", Dtype: sqlvalue.DtInt, Primary: true},
	})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Schema))
}

func TestNewTablePrimaryImpliesUnique(t *testing.T) {
	tbl, err := NewTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt, Primary: true}})
	require.NoError(t, err)
	col, _ := tbl.ColumnByName("id")
	assert.True(t, col.Unique)
}

// TestInsertAndSelectAll mirrors scenario S1.
func TestInsertAndSelectAll(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "name": sqlvalue.NewString("a")})
	require.NoError(t, err)

	rows, err := tbl.Select([]string{"*"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, ok := rows[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, sqlvalue.NewInt(1), v)
	v, _ = rows[0].Get("name")
	assert.Equal(t, sqlvalue.NewString("a"), v)
	v, _ = rows[0].Get("price")
	assert.True(t, v.IsNull())
}

func TestInsertRejectsNullPrimary(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"name": sqlvalue.NewString("a")})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Constraint))
	assert.Empty(t, tbl.Rows)
}

// TestUniqueConstraintViolation mirrors scenario S2.
func TestUniqueConstraintViolation(t *testing.T) {
	tbl, err := NewTable("u", []Column{
		{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
		{Name: "email", Dtype: sqlvalue.DtString, Unique: true},
	})
	require.NoError(t, err)

	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "email": sqlvalue.NewString("x@y")})
	require.NoError(t, err)

	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2), "email": sqlvalue.NewString("x@y")})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Constraint))
	assert.Len(t, tbl.Rows, 1)
}

// TestSelectWhereComparisons mirrors scenario S3.
func TestSelectWhereComparisons(t *testing.T) {
	tbl, err := NewTable("p", []Column{
		{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
		{Name: "price", Dtype: sqlvalue.DtFloat},
	})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "price": sqlvalue.NewFloat(9.5)})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2), "price": sqlvalue.NewFloat(10.0)})
	require.NoError(t, err)

	rows, err := tbl.Select([]string{"*"}, &ast.Where{Column: "price", Op: ">", Value: sqlvalue.NewInt(9)})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFastPathEquivalentToScan(t *testing.T) {
	tbl := newTestTable(t)
	for i := int64(1); i <= 5; i++ {
		_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(i), "name": sqlvalue.NewString("n")})
		require.NoError(t, err)
	}

	where := &ast.Where{Column: "id", Op: "=", Value: sqlvalue.NewInt(3)}
	fast, err := tbl.Select([]string{"*"}, where)
	require.NoError(t, err)

	scanned, err := tbl.scan(where)
	require.NoError(t, err)
	projected := tbl.project(scanned, []string{"*"})

	assert.Equal(t, projected, fast)
}

func TestSelectUnknownColumn(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Select([]string{"nope"}, nil)
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Schema))
}

func TestEqualityNullNeverMatchesNull(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1)})
	require.NoError(t, err)

	rows, err := tbl.Select([]string{"*"}, &ast.Where{Column: "name", Op: "=", Value: sqlvalue.NullValue})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateRebuildsIndexesAndRejectsCollision(t *testing.T) {
	tbl, err := NewTable("u", []Column{
		{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
		{Name: "email", Dtype: sqlvalue.DtString, Unique: true},
	})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "email": sqlvalue.NewString("a")})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2), "email": sqlvalue.NewString("b")})
	require.NoError(t, err)

	n, err := tbl.Update([]ast.Assignment{{Column: "email", Value: sqlvalue.NewString("a")}},
		&ast.Where{Column: "id", Op: "=", Value: sqlvalue.NewInt(2)})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Constraint))
	assert.Equal(t, 0, n)

	// original state must be untouched after a failed update
	rows, _ := tbl.Select([]string{"email"}, &ast.Where{Column: "id", Op: "=", Value: sqlvalue.NewInt(2)})
	v, _ := rows[0].Get("email")
	assert.Equal(t, sqlvalue.NewString("b"), v)
}

func TestUpdateUsesScanEvenForIndexedColumn(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "name": sqlvalue.NewString("a")})
	require.NoError(t, err)

	n, err := tbl.Update([]ast.Assignment{{Column: "name", Value: sqlvalue.NewString("z")}},
		&ast.Where{Column: "id", Op: "=", Value: sqlvalue.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdateRejectsNullPrimary(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1)})
	require.NoError(t, err)

	_, err = tbl.Update([]ast.Assignment{{Column: "id", Value: sqlvalue.NullValue}}, nil)
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Constraint))
}

func TestDeleteCompactsAndRebuildsIndexes(t *testing.T) {
	tbl := newTestTable(t)
	for i := int64(1); i <= 3; i++ {
		_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(i)})
		require.NoError(t, err)
	}

	n, err := tbl.Delete(&ast.Where{Column: "id", Op: "=", Value: sqlvalue.NewInt(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, tbl.Rows, 2)

	// re-insert the deleted id: must succeed since the index was rebuilt
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2)})
	require.NoError(t, err)
}

func TestDeleteAllWhenWhereNil(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1)})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2)})
	require.NoError(t, err)

	n, err := tbl.Delete(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, tbl.Rows)
}
